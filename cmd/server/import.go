package main

import (
	"alcyxob/fitness-social/internal/domain"
	"alcyxob/fitness-social/internal/service"
	"alcyxob/fitness-social/internal/storage"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var importGifDir string

var importCmd = &cobra.Command{
	Use:   "import-exercises <file.json>",
	Short: "Load an exercise dataset into the catalog",
	Long: `Import an ExerciseDB style JSON array into the exercise catalog.

Every record is upserted by id and receives its sequential id, in file order,
if it does not have one yet. Ids already assigned are kept.

With --gif-dir each <dir>/<id>.gif is uploaded to object storage under the
exercise's sequential id. Missing files are skipped.

  fitness-server import-exercises exercises.json
  fitness-server import-exercises exercises.json --gif-dir ./gifs`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return importExercises(ctx, args[0], importGifDir)
	},
}

func init() {
	importCmd.Flags().StringVar(&importGifDir, "gif-dir", "", "directory of <id>.gif files to upload")
}

// exerciseRecord is one entry of the ExerciseDB dataset.
type exerciseRecord struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	BodyPart         string   `json:"bodyPart"`
	Equipment        string   `json:"equipment"`
	Target           string   `json:"target"`
	SecondaryMuscles []string `json:"secondaryMuscles"`
	Instructions     []string `json:"instructions"`
	GifURL           string   `json:"gifUrl"`
}

// parseExerciseRecords decodes the dataset. Records without an id or name are
// rejected; a repeated id keeps its first position.
func parseExerciseRecords(r io.Reader) ([]domain.Exercise, error) {
	var records []exerciseRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode exercises: %w", err)
	}

	seen := make(map[string]int, len(records))
	exercises := make([]domain.Exercise, 0, len(records))
	for i, rec := range records {
		id := strings.TrimSpace(rec.ID)
		name := strings.TrimSpace(rec.Name)
		if id == "" || name == "" {
			return nil, fmt.Errorf("record %d: id and name are required", i)
		}
		ex := domain.Exercise{
			ID:               id,
			Name:             name,
			BodyPart:         rec.BodyPart,
			Equipment:        rec.Equipment,
			Target:           rec.Target,
			SecondaryMuscles: rec.SecondaryMuscles,
			Instructions:     rec.Instructions,
			SourceGifURL:     rec.GifURL,
		}
		ex.Normalize()
		if pos, dup := seen[id]; dup {
			log.Warnf("record %d repeats exercise id %s, keeping the later fields", i, id)
			exercises[pos] = ex
			continue
		}
		seen[id] = len(exercises)
		exercises = append(exercises, ex)
	}
	return exercises, nil
}

func importExercises(ctx context.Context, file, gifDir string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	exercises, err := parseExerciseRecords(f)
	_ = f.Close()
	if err != nil {
		return err
	}

	var fileStorage storage.FileStorage
	if gifDir != "" {
		fileStorage, err = openFileStorage(ctx, cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 storage: %w", err)
		}
		if fileStorage == nil {
			return errors.New("--gif-dir needs s3.bucket_name to be set")
		}
	}

	st, err := openStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer st.close()

	retry := service.DefaultRetryPolicy()
	retry.MaxRetries = cfg.Upstream.MaxRetries
	exerciseService := service.NewExerciseService(st.exercises, st.index, fileStorage, service.ExerciseServiceConfig{
		GifPrefix: cfg.S3.GifPrefix,
		Retry:     retry,
	})

	ids, err := exerciseService.ImportExercises(ctx, exercises)
	if err != nil {
		return fmt.Errorf("import exercises: %w", err)
	}
	log.Infof("imported %d exercises from %s", len(ids), file)

	if fileStorage == nil {
		return nil
	}
	uploaded, err := uploadGifs(ctx, fileStorage, cfg.S3.GifPrefix, gifDir, ids)
	if err != nil {
		return err
	}
	log.Infof("uploaded %d of %d GIFs from %s", uploaded, len(ids), gifDir)
	return nil
}

// uploadGifs stores <dir>/<id>.gif under the sequential-id key of each exercise.
func uploadGifs(ctx context.Context, fileStorage storage.FileStorage, prefix, dir string, ids map[string]int) (int, error) {
	uploaded := 0
	for exerciseID, seq := range ids {
		path := filepath.Join(dir, exerciseID+".gif")
		f, err := os.Open(path)
		if errors.Is(err, os.ErrNotExist) {
			log.Debugf("no GIF for exercise %s", exerciseID)
			continue
		}
		if err != nil {
			return uploaded, err
		}
		key := storage.GifKey(prefix, seq)
		err = fileStorage.UploadObject(ctx, key, "image/gif", f)
		_ = f.Close()
		if err != nil {
			return uploaded, fmt.Errorf("upload %s: %w", path, err)
		}
		uploaded++
	}
	return uploaded, nil
}
