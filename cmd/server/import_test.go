package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dataset = `[
  {"id": "0001", "name": "3/4 sit-up", "bodyPart": "waist", "equipment": "body weight",
   "target": "abs", "gifUrl": "https://example.com/0001.gif",
   "secondaryMuscles": ["hip flexors"], "instructions": ["Lie flat", "Curl up"]},
  {"id": "0002", "name": "45 side bend", "bodyPart": "waist", "equipment": "body weight", "target": "abs"},
  {"id": "0001", "name": "3/4 sit-up (v2)", "bodyPart": "waist", "equipment": "body weight", "target": "abs"}
]`

func TestParseExerciseRecords(t *testing.T) {
	exercises, err := parseExerciseRecords(strings.NewReader(dataset))
	require.NoError(t, err)
	require.Len(t, exercises, 2)

	assert.Equal(t, "0001", exercises[0].ID)
	assert.Equal(t, "3/4 sit-up (v2)", exercises[0].Name)
	assert.Equal(t, "0002", exercises[1].ID)
	assert.Equal(t, []string{}, exercises[1].SecondaryMuscles)
	assert.Equal(t, []string{}, exercises[1].Instructions)
}

func TestParseExerciseRecords_KeepsSourceGif(t *testing.T) {
	exercises, err := parseExerciseRecords(strings.NewReader(`[{"id":"7","name":"plank","gifUrl":"https://example.com/7.gif"}]`))
	require.NoError(t, err)
	require.Len(t, exercises, 1)
	assert.Equal(t, "https://example.com/7.gif", exercises[0].SourceGifURL)
}

func TestParseExerciseRecords_Errors(t *testing.T) {
	_, err := parseExerciseRecords(strings.NewReader(`{"id":"1"}`))
	assert.Error(t, err)

	_, err = parseExerciseRecords(strings.NewReader(`[{"id":" ","name":"plank"}]`))
	assert.ErrorContains(t, err, "record 0")

	_, err = parseExerciseRecords(strings.NewReader(`[{"id":"1","name":"ok"},{"id":"2"}]`))
	assert.ErrorContains(t, err, "record 1")
}

type recordingStorage struct {
	uploads map[string]string
}

func (s *recordingStorage) GeneratePresignedDownloadURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	return "https://gifs.example.com/" + objectKey, nil
}

func (s *recordingStorage) UploadObject(_ context.Context, objectKey, contentType string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.uploads[objectKey] = contentType + ":" + string(data)
	return nil
}

func TestUploadGifs_SkipsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "0001.gif"), []byte("GIF89a"), 0o600))

	fs := &recordingStorage{uploads: map[string]string{}}
	uploaded, err := uploadGifs(context.Background(), fs, "gifs/", dir, map[string]int{"0001": 1, "0002": 2})
	require.NoError(t, err)

	assert.Equal(t, 1, uploaded)
	assert.Equal(t, map[string]string{"gifs/1.gif": "image/gif:GIF89a"}, fs.uploads)
}
