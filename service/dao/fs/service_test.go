package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/taskflow/service/dao"
)

type document struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func TestService(t *testing.T) {
	ctx := context.Background()
	fields := func(d *document) map[string]string { return map[string]string{"Status": d.Status} }
	dir := t.TempDir()
	srv, err := New[document](ctx, dir, func(d *document) string { return d.ID }, WithFields[document](fields))
	require.NoError(t, err)

	assert.ErrorIs(t, srv.Save(ctx, nil), dao.ErrNilEntity)
	require.NoError(t, srv.Save(ctx, &document{ID: "1", Status: "draft"}))
	require.NoError(t, srv.Save(ctx, &document{ID: "2", Status: "waiting"}))
	require.NoError(t, srv.Save(ctx, &document{ID: "1", Status: "back"}))

	_, err = os.Stat(filepath.Join(dir, "2.json"))
	require.NoError(t, err, "documents live under the base directory")

	loaded, err := srv.Load(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "back", loaded.Status)

	_, err = srv.Load(ctx, "missing")
	assert.True(t, errors.Is(err, dao.ErrNotFound))

	items, err := srv.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, len(items))

	items, err = srv.List(ctx, dao.NewParameter("Status", "waiting", "finish"))
	require.NoError(t, err)
	assert.Equal(t, 1, len(items))

	reopened, err := New[document](ctx, dir, func(d *document) string { return d.ID })
	require.NoError(t, err)
	items, err = reopened.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, len(items))

	require.NoError(t, srv.Delete(ctx, "1"))
	assert.True(t, errors.Is(srv.Delete(ctx, "1"), dao.ErrNotFound))
}
