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
package definitions

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v3"

	"github.com/ocomsoft/makeviews/internal/errors"
	"github.com/ocomsoft/makeviews/internal/types"
)

// Parser handles views.yaml parsing and validation
type Parser struct {
	logger *zap.Logger
}

// NewParser creates a new definitions parser
func NewParser(logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{logger: logger}
}

// Parse parses definitions from YAML content. name identifies the content in
// errors.
func (p *Parser) Parse(name, content string) (*types.Definitions, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errors.NewValidationError(name, "definitions file is empty")
	}

	var defs types.Definitions
	if err := yaml.Unmarshal([]byte(content), &defs); err != nil {
		return nil, errors.NewDefinitionParseError(name, yamlLine(err), fmt.Sprintf("invalid YAML syntax: %v", err))
	}

	normalize(&defs)

	if err := defs.Validate(); err != nil {
		return nil, errors.NewValidationError(name, err.Error())
	}

	p.logger.Debug("Parsed view definitions",
		zap.String("file", name),
		zap.String("database", defs.Database.Name),
		zap.Int("views", len(defs.Views)),
		zap.Int("materialized_views", len(defs.MaterializedViews)),
		zap.Int("mapping_views", len(defs.MappingViews)),
		zap.Int("refresh_jobs", len(defs.RefreshJobs)))

	return &defs, nil
}

// ParseFile reads and parses a definitions file
func (p *Parser) ParseFile(path string) (*types.Definitions, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definitions file %s: %w", path, err)
	}
	return p.Parse(path, string(content))
}

// normalize trims queries and upper-cases check options
func normalize(defs *types.Definitions) {
	for i := range defs.Views {
		defs.Views[i].Query = strings.TrimSpace(defs.Views[i].Query)
		defs.Views[i].CheckOption = types.CheckOption(strings.ToUpper(strings.TrimSpace(string(defs.Views[i].CheckOption))))
	}
	for i := range defs.MaterializedViews {
		defs.MaterializedViews[i].Query = strings.TrimSpace(defs.MaterializedViews[i].Query)
	}
}

// yamlLine extracts the line number from a yaml.v3 error, or 0
func yamlLine(err error) int {
	var line int
	msg := err.Error()
	if i := strings.Index(msg, "line "); i >= 0 {
		fmt.Sscanf(msg[i:], "line %d", &line)
	}
	return line
}
