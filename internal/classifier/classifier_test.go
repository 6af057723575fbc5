package classifier

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/leaderofARS/anti-phishing-system/internal/feature"
	"github.com/leaderofARS/anti-phishing-system/internal/lexical"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSyntheticIsDeterministic(t *testing.T) {
	t.Parallel()

	a, b := NewSynthetic(), NewSynthetic()
	if !slices.Equal(a.model.Weights, b.model.Weights) || a.model.Intercept != b.model.Intercept {
		t.Error("two synthetic trainings produced different weights")
	}

	info := a.Info()
	if info.Variant != VariantSynthetic || info.ModelType != ModelTypeLogistic {
		t.Errorf("Info = %+v", info)
	}
	if !slices.Equal(info.Features, SyntheticSchema) {
		t.Errorf("Features = %v, want %v", info.Features, SyntheticSchema)
	}
	if info.Accuracy < 0.8 {
		t.Errorf("training accuracy = %.3f, expected the clusters to be separable", info.Accuracy)
	}
}

func TestScoreRanges(t *testing.T) {
	t.Parallel()

	c := NewSynthetic()
	vectors := []feature.Vector{
		feature.New(),
		lexical.Analyze("https://example.com"),
		lexical.Analyze("http://192.168.1.1/login-verify-account-suspended"),
	}
	for _, v := range vectors {
		risk, conf := c.Score(v)
		if risk < 0 || risk > 1 {
			t.Errorf("risk %v out of range", risk)
		}
		if conf < 0.5 || conf > 1 {
			t.Errorf("confidence %v out of range", conf)
		}
		if want := max(risk, 1-risk); conf != want {
			t.Errorf("confidence = %v, want %v", conf, want)
		}
	}
}

func TestScoreSeparatesClusters(t *testing.T) {
	t.Parallel()

	c := NewSynthetic()

	phish := lexical.Analyze("http://192.168.1.1/login-verify-account-suspended")
	phish.SetInt(feature.DomainAgeDays, feature.UnknownDomainAge)
	phishRisk, _ := c.Score(phish)

	legit := lexical.Analyze("https://example.com/")
	legit.SetInt(feature.DomainAgeDays, 9000)
	legitRisk, _ := c.Score(legit)

	if phishRisk < 0.3 {
		t.Errorf("IP literal with keywords scored %.3f, want at least 0.3", phishRisk)
	}
	if legitRisk >= 0.3 {
		t.Errorf("old https domain scored %.3f, want below 0.3", legitRisk)
	}
}

func TestMissingFeaturesScoreAsZero(t *testing.T) {
	t.Parallel()

	c := NewSynthetic()

	zero := feature.New()
	for _, name := range SyntheticSchema {
		zero.SetInt(name, 0)
	}
	explicit, _ := c.Score(zero)
	missing, _ := c.Score(feature.New())
	if explicit != missing {
		t.Errorf("missing features scored %v, explicit zeros scored %v", missing, explicit)
	}

	extra := zero.Clone()
	extra.SetInt("not_in_schema", 1000)
	withExtra, _ := c.Score(extra)
	if withExtra != explicit {
		t.Error("features outside the schema must be ignored")
	}
}

func TestSaveAndLoadPersisted(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	synthetic := NewSynthetic()
	if err := synthetic.Save(dir); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := Load(dir, discardLogger())
	info := loaded.Info()
	if info.Variant != VariantPersisted || info.Degraded {
		t.Errorf("Info = %+v, want persisted and not degraded", info)
	}
	if info.Accuracy != synthetic.Info().Accuracy {
		t.Errorf("accuracy = %v, want %v", info.Accuracy, synthetic.Info().Accuracy)
	}
	if !strings.Contains(info.Provenance, "seed 42") {
		t.Errorf("provenance = %q", info.Provenance)
	}

	v := lexical.Analyze("http://paypal-verify.example.tk/account")
	r1, c1 := synthetic.Score(v)
	r2, c2 := loaded.Score(v)
	if r1 != r2 || c1 != c2 {
		t.Errorf("persisted model scored (%v,%v), synthetic (%v,%v)", r2, c2, r1, c1)
	}
}

func TestPersistedSchemaOrderIsHonoured(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	model := &Model{
		Type:      ModelTypeLogistic,
		Weights:   []float64{10, 0},
		Intercept: 0,
		Mean:      []float64{0, 0},
		Scale:     []float64{1, 1},
	}
	c, err := New(model, []string{feature.HasIP, feature.URLLength}, ModelInfo{Variant: VariantPersisted})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Save(dir); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := LoadPersisted(dir)
	if err != nil {
		t.Fatalf("LoadPersisted: %v", err)
	}

	v := feature.New()
	v.SetBool(feature.HasIP, true)
	v.SetInt(feature.URLLength, 500)
	risk, _ := loaded.Score(v)
	if risk < 0.99 {
		t.Errorf("risk = %v, want the has_ip weight applied to the first column", risk)
	}
}

func TestLoadFallsBack(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		setup      func(t *testing.T, dir string)
		wantReason string
	}{
		{
			name:       "empty directory",
			setup:      func(*testing.T, string) {},
			wantReason: ModelFile,
		},
		{
			name: "corrupt blob",
			setup: func(t *testing.T, dir string) {
				writeArtifact(t, dir, ModelFile, "{not json")
				writeArtifact(t, dir, FeaturesFile, `["url_length"]`)
			},
			wantReason: "decode",
		},
		{
			name: "schema mismatch",
			setup: func(t *testing.T, dir string) {
				writeArtifact(t, dir, ModelFile, `{"model_type":"LogisticRegression","weights":[1,2],"intercept":0,"mean":[0,0],"scale":[1,1]}`)
				writeArtifact(t, dir, FeaturesFile, `["url_length"]`)
			},
			wantReason: "do not match",
		},
		{
			name: "unknown model type",
			setup: func(t *testing.T, dir string) {
				writeArtifact(t, dir, ModelFile, `{"model_type":"RandomForestClassifier"}`)
				writeArtifact(t, dir, FeaturesFile, `["url_length"]`)
			},
			wantReason: "unsupported",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			tt.setup(t, dir)

			c := Load(dir, discardLogger())
			info := c.Info()
			if info.Variant != VariantSynthetic || !info.Degraded {
				t.Errorf("Info = %+v, want degraded synthetic", info)
			}
			if !strings.Contains(info.Reason, tt.wantReason) {
				t.Errorf("Reason = %q, want it to mention %q", info.Reason, tt.wantReason)
			}
		})
	}
}

func TestLoadPersistedMissingSchema(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeArtifact(t, dir, ModelFile, `{"model_type":"LogisticRegression","weights":[1],"intercept":0,"mean":[0],"scale":[1]}`)

	if _, err := LoadPersisted(dir); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error = %v, want fs.ErrNotExist", err)
	}
}

func writeArtifact(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}
