/*
MIT License

# Copyright (c) 2025 OcomSoft

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
	"go.uber.org/zap"
	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"

	"github.com/ocomsoft/makeviews/internal/errors"
)

// CurrentModule is the ModulePath of definitions found in the working directory
const CurrentModule = "current module"

// DefinitionFile is a views definition file found in a module
type DefinitionFile struct {
	ModulePath string
	FilePath   string
	Content    string
}

// Scanner finds definition files in the current Go module and its direct
// dependencies
type Scanner struct {
	logger   *zap.Logger
	dirName  string
	fileName string
}

// New creates a scanner looking for fileName inside directories named dirName
func New(logger *zap.Logger, dirName, fileName string) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{
		logger:   logger,
		dirName:  dirName,
		fileName: fileName,
	}
}

// ScanModules returns the definition files of direct dependencies followed by
// those of the current module
func (s *Scanner) ScanModules() ([]DefinitionFile, error) {
	goModPath := "go.mod"

	if _, err := os.Stat(goModPath); os.IsNotExist(err) {
		return nil, errors.NewValidationError("go.mod", "file not found - ensure you're in a Go module directory")
	}

	goModBytes, err := os.ReadFile(goModPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read go.mod: %w", err)
	}

	if len(goModBytes) == 0 {
		return nil, errors.NewValidationError("go.mod", "file is empty")
	}

	modFile, err := modfile.Parse(goModPath, goModBytes, nil)
	if err != nil {
		return nil, errors.NewDefinitionParseError(goModPath, 0, fmt.Sprintf("invalid go.mod syntax: %v", err))
	}

	if modFile.Module == nil {
		return nil, errors.NewValidationError("go.mod", "missing module declaration")
	}

	var files []DefinitionFile

	for _, req := range modFile.Require {
		if req.Indirect {
			continue
		}

		log := s.logger.With(zap.String("module", req.Mod.Path), zap.String("version", req.Mod.Version))

		modPath := s.modulePath(req.Mod)
		if modPath == "" {
			log.Debug("Module not found in module cache")
			continue
		}

		found, err := s.findInPath(modPath, req.Mod.Path, nil)
		if err != nil {
			log.Debug("Failed to scan module", zap.Error(err))
			continue
		}

		// A dependency contributes at most one file
		if len(found) > 0 {
			files = append(files, found[0])
			log.Debug("Found view definitions", zap.String("path", found[0].FilePath))
		}
	}

	current, err := s.findInPath(".", CurrentModule, loadGitIgnore(".gitignore"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan current module: %w", err)
	}
	files = append(files, current...)

	s.logger.Debug("Scanned modules",
		zap.String("module", modFile.Module.Mod.Path),
		zap.Int("definition_files", len(files)))

	return files, nil
}

func (s *Scanner) findInPath(basePath, modulePath string, ignored *ignore.GitIgnore) ([]DefinitionFile, error) {
	var files []DefinitionFile

	err := filepath.WalkDir(basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		if d.IsDir() {
			if path != basePath && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			if ignored != nil && path != basePath && ignored.MatchesPath(filepath.ToSlash(path)+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Name() != s.fileName || filepath.Base(filepath.Dir(path)) != s.dirName {
			return nil
		}
		if ignored != nil && ignored.MatchesPath(filepath.ToSlash(path)) {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("Failed to read definitions file", zap.String("path", path), zap.Error(err))
			return nil
		}

		files = append(files, DefinitionFile{
			ModulePath: modulePath,
			FilePath:   path,
			Content:    string(content),
		})
		return nil
	})

	if err != nil {
		return nil, err
	}

	return files, nil
}

// skipDir reports directories the go tool ignores
func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") ||
		name == "vendor" || name == "testdata"
}

func loadGitIgnore(path string) *ignore.GitIgnore {
	ignored, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil
	}
	return ignored
}

// modulePath locates a module version in the module cache
func (s *Scanner) modulePath(mod module.Version) string {
	cacheDir := os.Getenv("GOMODCACHE")
	if cacheDir == "" {
		goPath := os.Getenv("GOPATH")
		if goPath == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return ""
			}
			goPath = filepath.Join(home, "go")
		}
		cacheDir = filepath.Join(goPath, "pkg", "mod")
	}

	escapedPath, err := module.EscapePath(mod.Path)
	if err != nil {
		return ""
	}
	escapedVersion, err := module.EscapeVersion(mod.Version)
	if err != nil {
		return ""
	}

	cachePath := filepath.Join(cacheDir, escapedPath+"@"+escapedVersion)
	if _, err := os.Stat(cachePath); err == nil {
		return cachePath
	}

	return ""
}
