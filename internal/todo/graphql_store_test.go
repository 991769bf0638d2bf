package todo

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/idilsaglam/tadasync/internal/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The backend answers the first list and then goes down with a JSON body.
func TestController_RefreshKeepsItemsWhenBackendUnavailable(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if hits.Add(1) == 1 {
			_, _ = io.WriteString(w, `{"data":{"listTodos":{"items":[
				{"id":"1","name":"Buy milk","description":"2%","createdAt":"2024-05-01T10:00:00Z","updatedAt":"2024-05-01T10:00:00Z"}
			]}}}`)
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"message":"Service Unavailable"}`)
	}))
	t.Cleanup(srv.Close)

	store, err := remote.NewGraphQL(context.Background(), remote.Options{Endpoint: srv.URL})
	require.NoError(t, err)

	var failed []Op
	c := New(store, WithErrorHandler(func(op Op, err error) { failed = append(failed, op) }))

	require.NoError(t, c.Refresh(context.Background()))
	before := c.Items()
	require.Len(t, before, 1)

	err = c.Refresh(context.Background())
	var rerr *RemoteOperationError
	require.ErrorAs(t, err, &rerr)
	var serr *remote.StatusError
	assert.ErrorAs(t, err, &serr)

	assert.Equal(t, []Op{OpList}, failed)
	assert.Equal(t, before, c.Items())

	// A create against the down backend fails without a refresh.
	err = c.SubmitCreate(context.Background(), "Walk dog", "park")
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, OpCreate, rerr.Op)
	assert.Equal(t, []Op{OpList, OpCreate}, failed)
	assert.Equal(t, before, c.Items())
	assert.Equal(t, int32(3), hits.Load())
}
