package fetch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanq16/printgrab/internal/printables"
)

func TestBuildPlanPathsAndFolders(t *testing.T) {
	dir := t.TempDir()
	files := []printables.File{
		{Name: "body.stl"},
		{Name: "lid.stl", Folder: "parts"},
		{Name: "bad<name>.stl"},
	}
	items := BuildPlan(files, dir)
	require.Len(t, items, 3)
	assert.Equal(t, filepath.Join(dir, "body.stl"), items[0].OutputPath)
	assert.Equal(t, filepath.Join(dir, "parts", "lid.stl"), items[1].OutputPath)
	assert.Equal(t, filepath.Join(dir, "bad_name_.stl"), items[2].OutputPath)
	for _, item := range items {
		assert.False(t, item.Exists)
	}
}

func TestBuildPlanRenamesCollidingNames(t *testing.T) {
	dir := t.TempDir()
	files := []printables.File{
		{Name: "part?.stl"},
		{Name: "part*.stl"},
		{Name: "part_.stl"},
	}
	items := BuildPlan(files, dir)
	require.Len(t, items, 3)
	assert.Equal(t, filepath.Join(dir, "part_.stl"), items[0].OutputPath)
	assert.Equal(t, filepath.Join(dir, "part_-(1).stl"), items[1].OutputPath)
	assert.Equal(t, filepath.Join(dir, "part_-(2).stl"), items[2].OutputPath)
}

func TestBuildPlanMarksExistingFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "done.stl"), []byte("x"), 0644))
	files := []printables.File{
		{Name: "done.stl"},
		{Name: "new.stl"},
	}
	items := BuildPlan(files, dir)
	assert.True(t, items[0].Exists)
	assert.False(t, items[1].Exists)
}

func TestBuildPlanRenamesAroundFilesOnDisk(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x-(1).stl"), []byte("x"), 0644))
	files := []printables.File{{Name: "x.stl"}, {Name: "x.stl"}}
	items := BuildPlan(files, dir)
	assert.Equal(t, filepath.Join(dir, "x.stl"), items[0].OutputPath)
	assert.Equal(t, filepath.Join(dir, "x-(2).stl"), items[1].OutputPath)
}
