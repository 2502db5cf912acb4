// Package export plans texture exports for a material.
//
// Baking pixels is the host application's job. This package decides what the
// host has to bake: one job per enabled material channel, each with its image
// name, output path, file format, and post-processing flags.
//
//	plan, err := export.Build(m, "Cube", export.FromConfig(cfg.Export))
//	for _, job := range plan.Jobs {
//	    host.Bake(job.Channel, job.Path)
//	}
package export

import (
	"context"
	"encoding/json"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/matlayer/pkg/cache"
	"github.com/matzehuels/matlayer/pkg/config"
	"github.com/matzehuels/matlayer/pkg/errors"
	"github.com/matzehuels/matlayer/pkg/material"
)

// Material channels in bake order.
var Channels = []string{
	"COLOR",
	"SUBSURFACE",
	"SUBSURFACE_COLOR",
	"METALLIC",
	"SPECULAR",
	"ROUGHNESS",
	"NORMAL",
	"HEIGHT",
	"EMISSION",
}

// Name format trigger words.
const (
	TriggerMaterialName = "/MaterialName"
	TriggerMeshName     = "/MeshName"
)

// Extensions maps image formats to file extensions.
var Extensions = map[string]string{
	"PNG":   "png",
	"JPG":   "jpg",
	"TARGA": "tga",
	"EXR":   "exr",
}

// Settings control a plan.
type Settings struct {
	Folder     string   `json:"folder"` // base folder; empty means the working directory
	NameFormat string   `json:"name_format"`
	Format     string   `json:"format"`
	BitDepth   int      `json:"bit_depth"`
	Channels   []string `json:"channels"`
	Smoothness bool     `json:"smoothness"` // invert roughness into smoothness
	DirectX    bool     `json:"directx"`    // flip normal map green channel
	Padding    int      `json:"padding"`
	Width      int      `json:"width"`
	Height     int      `json:"height"`
}

// FromConfig converts export preferences into plan settings.
func FromConfig(c config.Export) Settings {
	return Settings{
		Folder:     c.Folder,
		NameFormat: c.NameFormat,
		Format:     c.Format,
		BitDepth:   c.BitDepth,
		Channels:   slices.Clone(c.Channels),
		Smoothness: c.RoughnessMode == "SMOOTHNESS",
		DirectX:    c.NormalMode == "DIRECTX",
		Padding:    c.Padding,
		Width:      c.Width,
		Height:     c.Height,
	}
}

// Job is one channel bake.
type Job struct {
	Channel   string `json:"channel"`
	Image     string `json:"image"`
	Path      string `json:"path"`
	Format    string `json:"format"`
	BitDepth  int    `json:"bit_depth"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Padding   int    `json:"padding"`
	Invert    bool   `json:"invert,omitempty"`
	FlipGreen bool   `json:"flip_green,omitempty"`
}

// Plan is the full export for one object.
type Plan struct {
	Material string `json:"material"`
	Object   string `json:"object"`
	Texture  string `json:"texture"` // NameFormat with trigger words replaced
	Dir      string `json:"dir"`
	Jobs     []Job  `json:"jobs"`
}

// TextureDir returns the folder textures are written to.
func TextureDir(folder string) string {
	return filepath.Join(folder, "Matlay", "Textures")
}

// FormatName replaces trigger words in format.
func FormatName(format, materialName, meshName string) string {
	return strings.NewReplacer(
		TriggerMaterialName, materialName,
		TriggerMeshName, meshName,
	).Replace(format)
}

// Validate checks the settings before planning.
func (s Settings) Validate() error {
	if _, ok := Extensions[s.Format]; !ok {
		return errors.New(errors.ErrCodeInvalidInput, "unknown image format %q", s.Format)
	}
	if s.BitDepth != 8 && s.BitDepth != 32 {
		return errors.New(errors.ErrCodeInvalidInput, "bit depth must be 8 or 32, got %d", s.BitDepth)
	}
	if s.Width <= 0 || s.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "texture size %dx%d must be positive", s.Width, s.Height)
	}
	for _, ch := range s.Channels {
		if !slices.Contains(Channels, ch) {
			return errors.New(errors.ErrCodeInvalidInput, "unknown material channel %q", ch)
		}
	}
	return nil
}

// Build plans the export of m baked onto object. Channels are emitted in bake
// order regardless of their order in s.Channels; duplicates are dropped.
func Build(m *material.Material, object string, s Settings) (*Plan, error) {
	if m == nil || m.Tree == nil {
		return nil, errors.New(errors.ErrCodeNoActiveContext, "no active material")
	}
	if object == "" {
		return nil, errors.New(errors.ErrCodeNoActiveContext, "no object to bake to")
	}
	if m.Layers.Len() == 0 {
		return nil, errors.New(errors.ErrCodeNoActiveContext, "material %s has no layers to bake", m.Name)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	plan := &Plan{
		Material: m.Name,
		Object:   object,
		Texture:  FormatName(s.NameFormat, m.Name, object),
		Dir:      TextureDir(s.Folder),
	}
	ext := Extensions[s.Format]
	for _, ch := range Channels {
		if !slices.Contains(s.Channels, ch) {
			continue
		}
		image := object + "_" + ch
		plan.Jobs = append(plan.Jobs, Job{
			Channel:   ch,
			Image:     image,
			Path:      filepath.Join(plan.Dir, image+"."+ext),
			Format:    s.Format,
			BitDepth:  s.BitDepth,
			Width:     s.Width,
			Height:    s.Height,
			Padding:   s.Padding,
			Invert:    ch == "ROUGHNESS" && s.Smoothness,
			FlipGreen: ch == "NORMAL" && s.DirectX,
		})
	}
	m.Logger.Debug("export planned", "material", m.Name, "object", object, "jobs", len(plan.Jobs))
	return plan, nil
}

// BuildCached is Build with the encoded plan cached under the document hash.
func BuildCached(ctx context.Context, c cache.Cache, keyer cache.Keyer, docHash string, m *material.Material, object string, s Settings, ttl time.Duration) (*Plan, error) {
	settings, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	key := keyer.PlanKey(docHash, cache.PlanKeyOpts{Object: object, Settings: cache.Hash(settings)})

	data, _, err := cache.GetOrCompute(ctx, c, key, "plan", ttl, func() ([]byte, error) {
		plan, err := Build(m, object, s)
		if err != nil {
			return nil, err
		}
		return json.Marshal(plan)
	})
	if err != nil {
		return nil, err
	}
	var plan Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode cached plan")
	}
	return &plan, nil
}
