package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceFCD/pkg/config"
	"github.com/OpenTraceLab/OpenTraceFCD/pkg/layers"
	"github.com/OpenTraceLab/OpenTraceFCD/pkg/library"
	"github.com/OpenTraceLab/OpenTraceFCD/pkg/model"
	"github.com/OpenTraceLab/OpenTraceFCD/pkg/parser"
)

var (
	// Global flags
	verbose    bool
	configFile string
	libDir     string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "fcd",
	Short: "OpenTraceFCD - FidoCadJ drawing tools",
	Long: `OpenTraceFCD (fcd) reads, checks and rewrites FidoCadJ drawings:
  - parsing of .fcd drawings, FCJ extensions and FJC settings included
  - .fcl symbol libraries and msgpack library caches
  - drawing size, hit testing and macro expansion

Examples:
  fcd info drawing.fcd              # Count primitives and show diagnostics
  fcd fmt drawing.fcd -o clean.fcd  # Rewrite a drawing
  fcd split drawing.fcd             # Expand non standard macros
  fcd lib list ~/fidocad/libs       # List library macros
  fcd serve                         # Start the HTTP API`,
	Version:           "0.3.0",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "configuration file (default $HOME/"+config.DefaultFile+")")
	rootCmd.PersistentFlags().StringVarP(&libDir, "lib-dir", "L", "", "directory of .fcl libraries")
}

// loadConfig reads --config, or the file in $HOME when it exists
func loadConfig(cmd *cobra.Command, args []string) error {
	if verbose {
		log.SetFlags(0)
	}

	path := configFile
	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, config.DefaultFile)
			if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
				path = ""
			}
		}
	}

	if path == "" {
		cfg = config.DefaultConfig()
	} else {
		c, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}
		cfg = c
	}
	if libDir != "" {
		cfg.LibraryDir = libDir
	}
	return nil
}

// loadLibrary reads the macro libraries named by the configuration
func loadLibrary() (library.Library, error) {
	if cfg.CacheFile != "" {
		if _, err := os.Stat(cfg.CacheFile); err == nil {
			lib, err := library.LoadCacheFile(cfg.CacheFile)
			if err != nil {
				return nil, fmt.Errorf("error loading library cache: %w", err)
			}
			if verbose {
				fmt.Printf("Loaded %d macros from %s\n", len(lib), cfg.CacheFile)
			}
			return lib, nil
		}
	}

	lib := library.New()
	if err := library.LoadDirectory(cfg.LibraryDir, lib); err != nil {
		// Files that could be read are kept
		log.Printf("Some libraries could not be read: %v", err)
	}
	return lib, nil
}

// newParser creates a parser for an empty drawing set up from the
// configuration
func newParser(lib library.Library) (*parser.Parser, error) {
	ll := layers.Standard()
	if err := cfg.ApplyLayers(ll); err != nil {
		return nil, err
	}
	d := model.New(lib, ll)
	d.TextFont = cfg.TextFont
	d.TextFontSize = cfg.TextFontSize

	p := parser.New(d)
	p.SetDefaults(cfg.Defaults)
	return p, nil
}

// openDrawing parses the drawing at path with the configured libraries
func openDrawing(path string) (*parser.Parser, *parser.Result, error) {
	lib, err := loadLibrary()
	if err != nil {
		return nil, nil, err
	}
	p, err := newParser(lib)
	if err != nil {
		return nil, nil, err
	}
	res, err := p.ParseFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("error parsing drawing: %w", err)
	}
	return p, res, nil
}
