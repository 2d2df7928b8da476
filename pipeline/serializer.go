package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	recommender "recdiv/recommender"

	"github.com/vmihailenco/msgpack/v5"
)

// ExperimentSerializer handles the on-disk layout of one experiment:
// timestamped model snapshots, score archives, the metadata file and
// the finished mark, all under baseDir/experimentID.
type ExperimentSerializer struct {
	baseDir          string
	experimentID     string
	maxSnapshotCount int
}

// NewExperimentSerializer creates a serializer for one experiment ID.
func NewExperimentSerializer(baseDir string, experimentID string, maxSnapshotCount int) *ExperimentSerializer {
	return &ExperimentSerializer{
		baseDir:          baseDir,
		experimentID:     experimentID,
		maxSnapshotCount: maxSnapshotCount,
	}
}

func (s *ExperimentSerializer) getExperimentDir() string {
	return filepath.Join(s.baseDir, s.experimentID)
}

// Exists reports whether the experiment directory is present.
func (s *ExperimentSerializer) Exists() bool {
	_, err := os.Stat(s.getExperimentDir())
	return !os.IsNotExist(err)
}

func (s *ExperimentSerializer) ensureExperimentDir() error {
	dir := s.getExperimentDir()
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

// #region serialize

func (s *ExperimentSerializer) _list(fileType string, suffixName string) ([]string, error) {
	dir := s.getExperimentDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), fileType+"-") && strings.HasSuffix(entry.Name(), suffixName) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}

	// Names embed an ISO 8601 timestamp, so lexical order is
	// chronological order.
	sort.Strings(files)
	return files, nil
}

func (s *ExperimentSerializer) _getFilePath(fileType string, suffixName string) string {
	timestamp := time.Now().UTC().Format(time.RFC3339)
	timestamp = strings.ReplaceAll(timestamp, ":", "")
	filename := fmt.Sprintf("%s-%s%s", fileType, timestamp, suffixName)
	return filepath.Join(s.getExperimentDir(), filename)
}

func (s *ExperimentSerializer) _write(fileType string, snapshot any) error {
	if err := s.ensureExperimentDir(); err != nil {
		return err
	}

	data, err := msgpack.Marshal(snapshot)
	if err != nil {
		return err
	}

	filePath := s._getFilePath(fileType, ".msgpack")
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return err
	}

	return s._clean(fileType, ".msgpack")
}

func (s *ExperimentSerializer) _clean(fileType string, suffixName string) error {
	if s.maxSnapshotCount <= 0 {
		return nil
	}

	files, err := s._list(fileType, suffixName)
	if err != nil {
		return err
	}

	toDelete := len(files) - s.maxSnapshotCount
	for i := 0; i < toDelete; i++ {
		if err := os.Remove(files[i]); err != nil {
			return err
		}
	}
	return nil
}

// #endregion

// #region model snapshot

// SaveModelSnapshot persists the trained factorization state.
func (s *ExperimentSerializer) SaveModelSnapshot(snapshot *recommender.FactorizationDump) error {
	return s._write("snapshot", snapshot)
}

// GetLatestModelSnapshot loads the most recent snapshot, or nil when
// none exists yet.
func (s *ExperimentSerializer) GetLatestModelSnapshot() (*recommender.FactorizationDump, error) {
	if !s.Exists() {
		return nil, nil
	}
	files, err := s._list("snapshot", ".msgpack")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	data, err := os.ReadFile(files[len(files)-1])
	if err != nil {
		return nil, err
	}
	var snapshot recommender.FactorizationDump
	if err := msgpack.Unmarshal(data, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// #endregion

// #region score archive

// SaveScores writes the dense per-user score matrix next to the other
// run artifacts and prunes old archives.
func (s *ExperimentSerializer) SaveScores(scores [][]float64) error {
	if err := s.ensureExperimentDir(); err != nil {
		return err
	}

	fileType := "scores"
	filePath := s._getFilePath(fileType, ".lz4")

	if err := SaveScoreArchive(filePath, scores); err != nil {
		return err
	}
	return s._clean(fileType, ".lz4")
}

// GetLatestScores loads the most recent score archive, or nil when
// none exists yet.
func (s *ExperimentSerializer) GetLatestScores() ([][]float64, error) {
	if !s.Exists() {
		return nil, nil
	}
	files, err := s._list("scores", ".lz4")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}
	return LoadScoreArchive(files[len(files)-1])
}

// #endregion

// #region finished mark

type FinishMark struct {
}

func (s *ExperimentSerializer) MarkFinished() error {
	return s._write("finished", &FinishMark{})
}

func (s *ExperimentSerializer) IsFinished() (bool, error) {
	if !s.Exists() {
		return false, nil
	}
	files, err := s._list("finished", ".msgpack")
	if err != nil {
		return false, err
	}
	return len(files) > 0, nil
}

// #endregion

// SaveMetadata stores the experiment metadata as readable JSON.
func (s *ExperimentSerializer) SaveMetadata(metadata *ExperimentMetadata) error {
	if err := s.ensureExperimentDir(); err != nil {
		return err
	}

	filePath := filepath.Join(s.getExperimentDir(), "metadata.json")

	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}

// LoadMetadata loads the stored experiment metadata, or nil when the
// experiment has never been saved.
func (s *ExperimentSerializer) LoadMetadata() (*ExperimentMetadata, error) {
	if !s.Exists() {
		return nil, nil
	}

	filePath := filepath.Join(s.getExperimentDir(), "metadata.json")

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var metadata ExperimentMetadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, err
	}
	return &metadata, nil
}
