package app

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/specialistvlad/gridwalk/internal/manifest"
	"github.com/specialistvlad/gridwalk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const diamondGrid = `
	step "print" "a" {
	  arguments {
	    message = "from a"
	  }
	}

	step "print" "b" {
	  depends_on = ["print.a"]
	  arguments {
	    message = "from b"
	  }
	}

	step "print" "c" {
	  depends_on = ["print.a"]
	  arguments {
	    message = "from c"
	  }
	}

	step "print" "d" {
	  depends_on = ["print.b", "print.c"]
	  arguments {
	    message = "from d"
	  }
	}
`

func TestRun_Diamond(t *testing.T) {
	t.Parallel()
	dir := testutil.WriteFiles(t, map[string]string{"main.hcl": diamondGrid})

	a, out, logs := SetupAppTest(t, Config{GridPath: dir})
	m, err := a.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, m.OK())
	assert.Equal(t, 4, m.Counts.Ready)
	for _, msg := range []string{"from a", "from b", "from c", "from d"} {
		assert.Contains(t, out.String(), msg)
	}
	assert.Contains(t, out.String(), "4 ready, 0 failed")
	assert.Contains(t, logs.String(), "Run finished.")

	ids, err := a.History(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{m.RunID}, ids)
}

func TestRun_FailureIsReportedNotReturned(t *testing.T) {
	t.Parallel()
	dir := testutil.WriteFiles(t, map[string]string{"main.hcl": `
		step "fail" "a" {
		  arguments {
		    message = "nope"
		  }
		}

		step "print" "b" {
		  depends_on = ["fail.a"]
		  arguments {
		    message = "never"
		  }
		}
	`})

	a, out, _ := SetupAppTest(t, Config{GridPath: dir, ManifestFormat: "json"})
	m, err := a.Run(context.Background())
	require.NoError(t, err)

	assert.False(t, m.OK())
	assert.Equal(t, 2, m.Counts.Failed)
	assert.NotContains(t, out.String(), "never\n")
	assert.Contains(t, out.String(), `"run_id"`)
	assert.Contains(t, out.String(), "nope")
}

func TestRun_LoadError(t *testing.T) {
	t.Parallel()
	a, _, _ := SetupAppTest(t, Config{GridPath: t.TempDir() + "/missing"})
	_, err := a.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load grid")
}

func TestRun_UnknownKindFailsBeforeExecution(t *testing.T) {
	t.Parallel()
	dir := testutil.WriteFiles(t, map[string]string{"main.hcl": `
		step "teleport" "a" {}
	`})
	a, _, _ := SetupAppTest(t, Config{GridPath: dir})
	_, err := a.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to prepare run")
	assert.Contains(t, err.Error(), "teleport")
}

func TestRun_MetricsAndHealth(t *testing.T) {
	t.Parallel()
	dir := testutil.WriteFiles(t, map[string]string{"main.hcl": diamondGrid})

	a, _, _ := SetupAppTest(t, Config{GridPath: dir, MetricsEnabled: true, Mode: "whole-graph"})
	_, err := a.Run(context.Background())
	require.NoError(t, err)

	srv := httptest.NewServer(a.healthMux())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK\n", string(body))

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "gridwalk_jobs_started_total 1")
	assert.True(t, strings.Contains(string(body), `gridwalk_nodes_finished_total{kind="print",state="READY"} 4`))
}

func TestHealthMux_NoMetricsWhenDisabled(t *testing.T) {
	t.Parallel()
	a, _, _ := SetupAppTest(t, Config{GridPath: "unused"})
	assert.Nil(t, a.Registry())

	srv := httptest.NewServer(a.healthMux())
	defer srv.Close()
	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRun_RedisManifestStore(t *testing.T) {
	t.Parallel()
	mr := miniredis.RunT(t)
	dir := testutil.WriteFiles(t, map[string]string{"main.hcl": diamondGrid})

	a, _, _ := SetupAppTest(t, Config{GridPath: dir, RedisAddr: mr.Addr(), RedisKeyPrefix: "t:"})
	m, err := a.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, mr.Exists("t:"+m.RunID))
	loaded, err := a.Manifest(context.Background(), m.RunID)
	require.NoError(t, err)
	assert.Equal(t, m.Counts, loaded.Counts)
}

func TestRun_ManifestStoreDown(t *testing.T) {
	t.Parallel()
	mr := miniredis.RunT(t)
	dir := testutil.WriteFiles(t, map[string]string{"main.hcl": diamondGrid})

	a, out, logs := SetupAppTest(t, Config{GridPath: dir, RedisAddr: mr.Addr()})
	mr.Close()

	m, err := a.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, manifest.ErrNotSaved)
	assert.NotContains(t, err.Error(), "execution failed")

	require.NotNil(t, m)
	assert.True(t, m.OK(), "every step ran; only persistence failed")
	assert.Contains(t, out.String(), "4 ready, 0 failed", "the manifest is written even when it cannot be saved")
	assert.Contains(t, logs.String(), "Failed to save manifest.")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	good := testutil.WriteFiles(t, map[string]string{"main.hcl": diamondGrid})
	a, _, _ := SetupAppTest(t, Config{GridPath: good})
	require.NoError(t, a.Validate(context.Background()))

	bad := testutil.WriteFiles(t, map[string]string{"main.hcl": `
		step "teleport" "a" {}
		step "warp" "b" {}
	`})
	a, _, _ = SetupAppTest(t, Config{GridPath: bad})
	err := a.Validate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "teleport")
	assert.Contains(t, err.Error(), "warp")
}

func TestPaths(t *testing.T) {
	t.Parallel()
	dir := testutil.WriteFiles(t, map[string]string{"main.hcl": diamondGrid})
	a, _, _ := SetupAppTest(t, Config{GridPath: dir})

	paths, err := a.Paths(context.Background(), "step.print.d")
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, "step.print.a -> step.print.b -> step.print.d", paths[0].String())
	assert.Equal(t, "step.print.a -> step.print.c -> step.print.d", paths[1].String())

	_, err = a.Paths(context.Background(), "step.print.zzz")
	assert.Error(t, err)
}
