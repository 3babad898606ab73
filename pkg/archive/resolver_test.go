package archive_test

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auroralab/allsky/internal/testutil"
	"github.com/auroralab/allsky/pkg/archive"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)

	return log
}

func TestListEntriesExcludesNavigationLinks(t *testing.T) {
	srv := testutil.NewArchiveServer()
	t.Cleanup(srv.Close)

	srv.AddFile("/data/a.pgm.gz", []byte("a"))
	srv.AddFile("/data/b.pgm.gz", []byte("b"))

	r := archive.NewResolver(testLogger(), &http.Client{})

	entries, err := r.ListEntries(context.Background(), srv.URL()+"data/", "")
	require.NoError(t, err)

	assert.Equal(t, []string{"a.pgm.gz", "b.pgm.gz"}, entries)
	for _, e := range entries {
		assert.NotEqual(t, "../", e)
		assert.NotContains(t, e, "?")
	}
}

func TestListEntriesPreservesListingOrder(t *testing.T) {
	srv := testutil.NewArchiveServer()
	t.Cleanup(srv.Close)

	// Insertion order, deliberately not lexical
	srv.AddFile("/dir/zulu.pgm.gz", []byte("z"))
	srv.AddFile("/dir/alpha.pgm.gz", []byte("a"))
	srv.AddFile("/dir/mike.pgm.gz", []byte("m"))

	r := archive.NewResolver(testLogger(), &http.Client{})

	entries, err := r.ListEntries(context.Background(), srv.URL()+"dir/", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"zulu.pgm.gz", "alpha.pgm.gz", "mike.pgm.gz"}, entries)
}

func TestListEntriesPatternIsCaseInsensitive(t *testing.T) {
	srv := testutil.NewArchiveServer()
	t.Cleanup(srv.Close)

	srv.AddDir("/day/luck_rego-full/")
	srv.AddDir("/day/gill_rego-full/")

	r := archive.NewResolver(testLogger(), &http.Client{})

	entries, err := r.ListEntries(context.Background(), srv.URL()+"day/", "LUCK")
	require.NoError(t, err)
	assert.Equal(t, []string{"luck_rego-full/"}, entries)
}

func TestListEntriesNoMatchIsDirectoryNotFound(t *testing.T) {
	srv := testutil.NewArchiveServer()
	t.Cleanup(srv.Close)

	srv.AddDir("/day/gill_rego-full/")

	r := archive.NewResolver(testLogger(), &http.Client{})

	entries, err := r.ListEntries(context.Background(), srv.URL()+"day/", "luck")
	require.Error(t, err)
	assert.ErrorIs(t, err, archive.ErrDirectoryNotFound)
	assert.Nil(t, entries, "zero matches is an error, never an empty success")
	assert.Contains(t, err.Error(), srv.URL()+"day/")
	assert.Contains(t, err.Error(), "luck")
}

func TestListEntriesEmptyListingIsDirectoryNotFound(t *testing.T) {
	srv := testutil.NewArchiveServer()
	t.Cleanup(srv.Close)

	srv.AddDir("/empty/")

	r := archive.NewResolver(testLogger(), &http.Client{})

	_, err := r.ListEntries(context.Background(), srv.URL()+"empty/", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, archive.ErrDirectoryNotFound)
}

// A missing directory answers 404, which is the same condition as a listing
// with no matches: Directory-Not-Found.
func TestListEntriesMissingDirectory(t *testing.T) {
	srv := testutil.NewArchiveServer()
	t.Cleanup(srv.Close)

	r := archive.NewResolver(testLogger(), &http.Client{})

	_, err := r.ListEntries(context.Background(), srv.URL()+"missing/", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, archive.ErrDirectoryNotFound)
}

func TestListEntriesBadStatus(t *testing.T) {
	srv := testutil.NewArchiveServer()
	t.Cleanup(srv.Close)

	srv.AddDir("/flaky/")
	srv.ForceStatus("/flaky/", http.StatusServiceUnavailable)

	r := archive.NewResolver(testLogger(), &http.Client{})

	_, err := r.ListEntries(context.Background(), srv.URL()+"flaky/", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, archive.ErrBadStatus)
}
