// Package report renders a flattened rule tree and its behavior mapping into a
// single self-contained HTML page with client-side navigation.
package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/verustcode/rulemap/consts"
	"github.com/verustcode/rulemap/internal/mapping"
	"github.com/verustcode/rulemap/internal/ruletree"
	"github.com/verustcode/rulemap/pkg/errors"
)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

var reportTemplate = template.Must(
	template.New("report.html.tmpl").ParseFS(templateFS, "templates/report.html.tmpl"),
)

// Default presentation values
const (
	DefaultTitle           = "Rule Children"
	DefaultHeading         = "Akamai Property Manager Rules:"
	DefaultEquivalentLabel = "Cloudflare Equivalent"
	DefaultStylesheetURL   = "https://cdn.jsdelivr.net/npm/tailwindcss@2.2.16/dist/tailwind.min.css"
	DefaultMaxIndent       = 5

	// indentStep is the padding added per indent level, in pixels
	indentStep = 10
)

// Options controls presentation only; none of it changes what is rendered
type Options struct {
	Title           string `yaml:"title"`
	Heading         string `yaml:"heading"`
	EquivalentLabel string `yaml:"equivalent_label"`
	StylesheetURL   string `yaml:"stylesheet_url"`
	// MaxIndent is the deepest styled indent level; deeper nodes reuse it
	MaxIndent int `yaml:"max_indent"`

	// RunID and GeneratedAt go into the footer when RunID is set
	RunID       string    `yaml:"-"`
	GeneratedAt time.Time `yaml:"-"`
	// PrintMode shows every panel at once, for PDF output
	PrintMode bool `yaml:"-"`
}

// DefaultOptions returns the stock presentation
func DefaultOptions() Options {
	return Options{
		Title:           DefaultTitle,
		Heading:         DefaultHeading,
		EquivalentLabel: DefaultEquivalentLabel,
		StylesheetURL:   DefaultStylesheetURL,
		MaxIndent:       DefaultMaxIndent,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Title == "" {
		o.Title = d.Title
	}
	if o.Heading == "" {
		o.Heading = d.Heading
	}
	if o.EquivalentLabel == "" {
		o.EquivalentLabel = d.EquivalentLabel
	}
	if o.StylesheetURL == "" {
		o.StylesheetURL = d.StylesheetURL
	}
	if o.MaxIndent <= 0 {
		o.MaxIndent = d.MaxIndent
	}
	return o
}

// Document is the view model behind one rendered page
type Document struct {
	Options
	Nodes    []NodeView
	Coverage Coverage
	Stats    JoinStats
	Version  string
}

// NodeView is one navigation entry plus its detail panel
type NodeView struct {
	Index int
	Name  string
	// Depth is the unclamped nesting depth
	Depth       int
	IndentClass string
	Comparisons []Comparison
	Criteria    string
}

// Visible reports whether the panel is shown on page load
func (n NodeView) Visible(printMode bool) bool {
	return printMode || n.Index == 0
}

// Build joins the flattened nodes with the mapping table
func Build(res ruletree.Result, table mapping.Table, opts Options) *Document {
	opts = opts.withDefaults()

	doc := &Document{
		Options:  opts,
		Nodes:    make([]NodeView, 0, len(res.Nodes)),
		Coverage: ComputeCoverage(res),
		Version:  consts.Version,
	}

	for i, node := range res.Nodes {
		comparisons, stats := Join(node, table)
		doc.Stats.Add(stats)
		doc.Nodes = append(doc.Nodes, NodeView{
			Index:       i,
			Name:        node.Name,
			Depth:       node.Depth,
			IndentClass: fmt.Sprintf("indent-%d", min(node.Depth, opts.MaxIndent)),
			Comparisons: comparisons,
			Criteria:    ReadableDump(node.Criteria),
		})
	}
	return doc
}

// IndentCSS returns the padding rules for every styled indent level
func (d *Document) IndentCSS() template.CSS {
	var sb strings.Builder
	for level := 0; level <= d.MaxIndent; level++ {
		fmt.Fprintf(&sb, ".indent-%d { padding-left: %dpx; }\n", level, level*indentStep)
	}
	return template.CSS(sb.String())
}

// MissingList is the comma separated list shown in the coverage banner
func (d *Document) MissingList() string {
	return strings.Join(d.Coverage.Missing, ", ")
}

// GeneratedAtText formats the footer timestamp
func (d *Document) GeneratedAtText() string {
	if d.GeneratedAt.IsZero() {
		return ""
	}
	return d.GeneratedAt.UTC().Format(time.RFC3339)
}

// Render executes the page template
func (d *Document) Render() ([]byte, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, "failed to render report", err)
	}
	return buf.Bytes(), nil
}

// Render builds and renders the page for a flattened tree in one call
func Render(res ruletree.Result, table mapping.Table, opts Options) ([]byte, error) {
	return Build(res, table, opts).Render()
}
