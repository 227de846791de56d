package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/restobridge/internal/ctxlog"
)

// DefaultFileName is looked up in the working directory when no explicit
// settings path is given.
const DefaultFileName = "restobridge.hcl"

// PipelineSettings locate and parameterize the Python pipeline.
type PipelineSettings struct {
	// Root is the pipeline project directory containing the entry script.
	Root string
	// Python is the interpreter used to launch the worker.
	Python string
	// Script is the entry script file name relative to Root.
	Script string
	// GPU is the default GPU selector.
	GPU string
	// WithScratch and HR are the default worker flags.
	WithScratch bool
	HR          bool
	// OutputFolder is the default output override; empty keeps the
	// pipeline's own default location under Root.
	OutputFolder string
}

// BridgeSettings configure the local progress bridge server.
type BridgeSettings struct {
	Port int
}

// Settings is the merged application configuration.
type Settings struct {
	Pipeline PipelineSettings
	Bridge   BridgeSettings
}

// Default returns the built-in settings used when no file is present.
func Default() Settings {
	return Settings{
		Pipeline: PipelineSettings{
			Python:      "python3",
			Script:      "run.py",
			GPU:         "-1",
			WithScratch: true,
		},
		Bridge: BridgeSettings{Port: 8747},
	}
}

// hclFile mirrors the settings file structure for decoding. Optional bools
// are pointers so an explicit `false` is distinguishable from absence.
type hclFile struct {
	Pipeline *hclPipelineBlock `hcl:"pipeline,block"`
	Bridge   *hclBridgeBlock   `hcl:"bridge,block"`
}

type hclPipelineBlock struct {
	Root         string `hcl:"root,optional"`
	Python       string `hcl:"python,optional"`
	Script       string `hcl:"script,optional"`
	GPU          string `hcl:"gpu,optional"`
	WithScratch  *bool  `hcl:"with_scratch,optional"`
	HR           *bool  `hcl:"hr,optional"`
	OutputFolder string `hcl:"output_folder,optional"`
}

type hclBridgeBlock struct {
	Port int `hcl:"port,optional"`
}

// evalContext exposes a few convenience variables to expressions in the
// settings file, so paths can be written as "${home}/...".
func evalContext() *hcl.EvalContext {
	home, _ := os.UserHomeDir()
	cwd, _ := os.Getwd()
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"home": cty.StringVal(home),
			"cwd":  cty.StringVal(cwd),
		},
	}
}

// Load reads the settings file at path and merges it over Default. An empty
// path selects DefaultFileName in the working directory; a missing default
// file is not an error, a missing explicit path is.
func Load(ctx context.Context, path string) (Settings, error) {
	logger := ctxlog.FromContext(ctx)
	settings := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFileName
	}

	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			logger.Debug("No settings file found, using defaults.", "path", path)
			return settings, nil
		}
		return Settings{}, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return Settings{}, fmt.Errorf("failed to parse settings file %s: %w", path, diags)
	}

	var parsed hclFile
	if diags := gohcl.DecodeBody(file.Body, evalContext(), &parsed); diags.HasErrors() {
		return Settings{}, fmt.Errorf("failed to decode settings file %s: %w", path, diags)
	}

	if p := parsed.Pipeline; p != nil {
		if p.Root != "" {
			settings.Pipeline.Root = p.Root
		}
		if p.Python != "" {
			settings.Pipeline.Python = p.Python
		}
		if p.Script != "" {
			settings.Pipeline.Script = p.Script
		}
		if p.GPU != "" {
			settings.Pipeline.GPU = p.GPU
		}
		if p.WithScratch != nil {
			settings.Pipeline.WithScratch = *p.WithScratch
		}
		if p.HR != nil {
			settings.Pipeline.HR = *p.HR
		}
		if p.OutputFolder != "" {
			settings.Pipeline.OutputFolder = p.OutputFolder
		}
	}
	if b := parsed.Bridge; b != nil && b.Port != 0 {
		settings.Bridge.Port = b.Port
	}

	logger.Debug("Settings file loaded.", "path", path)
	return settings, nil
}
