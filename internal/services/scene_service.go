package services

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/pkg/errors"

	"viewer-service/internal/extraction"
	"viewer-service/internal/geometry"
	"viewer-service/internal/metrics"
)

// SceneService fetches the scene index produced by the external conversion
// pipeline. The pipeline writes either a bare scene.json or a zipped scene
// bundle (scene.json plus textures) per unit.
type SceneService struct {
	Minio      *minio.Client
	BucketName string
	Metrics    *metrics.Metrics
}

// NewSceneService creates a new SceneService over the scene bucket.
func NewSceneService(minioClient *minio.Client, bucketName string, m *metrics.Metrics) *SceneService {
	return &SceneService{Minio: minioClient, BucketName: bucketName, Metrics: m}
}

const sceneIndexName = "scene.json"

// LoadScene retrieves and parses the scene index stored under sceneKey.
func (s *SceneService) LoadScene(ctx context.Context, sceneKey string) (geometry.Scene, error) {
	start := time.Now()
	var scene geometry.Scene

	obj, err := s.Minio.GetObject(ctx, s.BucketName, sceneKey, minio.GetObjectOptions{})
	if err != nil {
		return scene, errors.Wrap(err, "failed to retrieve scene from storage")
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return scene, errors.Wrap(err, "failed to read scene data")
	}

	if strings.HasSuffix(strings.ToLower(sceneKey), ".zip") {
		data, err = s.extractSceneIndex(data)
		if err != nil {
			return scene, err
		}
	}

	if err := json.Unmarshal(data, &scene); err != nil {
		return scene, errors.Wrap(err, "malformed scene index")
	}

	if s.Metrics != nil {
		s.Metrics.RecordSceneLoadLatency(time.Since(start).Milliseconds())
	}
	return scene, nil
}

// extractSceneIndex unpacks a scene bundle and returns the raw scene.json
// content found inside.
func (s *SceneService) extractSceneIndex(archive []byte) ([]byte, error) {
	tempFile, err := os.CreateTemp(os.TempDir(), "scene-*.zip")
	if err != nil {
		return nil, errors.Wrap(err, "could not create temporary file for scene bundle")
	}
	tempPath := tempFile.Name()
	defer os.Remove(tempPath)

	if _, err := tempFile.Write(archive); err != nil {
		tempFile.Close()
		return nil, errors.Wrap(err, "failed to write scene bundle")
	}
	tempFile.Close()

	files, destDir, err := extraction.ExtractArchive(tempPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to extract scene bundle")
	}
	defer os.RemoveAll(destDir)

	for _, path := range files {
		if filepath.Base(path) == sceneIndexName {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, errors.Wrap(err, "failed to read scene index from bundle")
			}
			return data, nil
		}
	}
	return nil, errors.Errorf("no %s found in scene bundle", sceneIndexName)
}
