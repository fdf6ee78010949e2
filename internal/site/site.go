// internal/site/site.go
package site

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"docsite/internal/config"
	"docsite/internal/document"
	derrors "docsite/internal/errors"
	"docsite/internal/logfields"
	"docsite/internal/metrics"
	"docsite/internal/nav"
	"docsite/internal/render"
	"docsite/internal/scan"
	"docsite/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Sentinel is written at the root of every output tree so static hosts do
// not run their own site generator over it.
const Sentinel = ".nojekyll"

// Options configure an Assembler.
type Options struct {
	SourceRoot     string
	Extension      string
	TemplateDir    string
	Sanitize       bool
	HighlightStyle string
	// OutputDir is excluded from the manifest when it lies inside SourceRoot.
	OutputDir string
}

type BuildOptions struct {
	CleanDestination bool
}

// Assembler turns source documents into complete pages and output trees.
type Assembler struct {
	site     config.Site
	opts     Options
	renderer *render.Renderer
	tmpl     *template.Template
	styles   template.CSS
	script   template.JS
	logger   *zap.Logger
	recorder metrics.Recorder
}

// New prepares an Assembler. A nil logger or recorder disables logging or
// metrics respectively.
func New(site config.Site, opts Options, logger *zap.Logger, recorder metrics.Recorder) (*Assembler, error) {
	if opts.Extension == "" {
		opts.Extension = scan.DefaultExtension
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}

	tmpl, err := LoadTemplates(opts.TemplateDir)
	if err != nil {
		return nil, err
	}
	renderer := render.New(render.Options{Sanitize: opts.Sanitize, HighlightStyle: opts.HighlightStyle})
	highlightCSS, err := renderer.StyleCSS()
	if err != nil {
		return nil, err
	}
	themeCSS, err := themeAsset("docsite.css")
	if err != nil {
		return nil, err
	}
	script, err := themeAsset("docsite.js")
	if err != nil {
		return nil, err
	}

	return &Assembler{
		site:     site,
		opts:     opts,
		renderer: renderer,
		tmpl:     tmpl,
		styles:   template.CSS(themeCSS + "\n" + highlightCSS),
		script:   template.JS(script),
		logger:   logger,
		recorder: recorder,
	}, nil
}

// SourceRoot is the directory documents are read from.
func (a *Assembler) SourceRoot() string { return a.opts.SourceRoot }

// Extension is the documentation source extension.
func (a *Assembler) Extension() string { return a.opts.Extension }

// Manifest scans the source root. Callers compute it once and pass the same
// slice to every Page call of a build.
func (a *Assembler) Manifest() ([]scan.SourceFile, error) {
	files, err := scan.Scan(a.opts.SourceRoot, a.opts.Extension)
	if err != nil {
		return nil, err
	}
	prefix := a.outputPrefix()
	if prefix == "" {
		return files, nil
	}
	kept := files[:0]
	for _, f := range files {
		if !strings.HasPrefix(f.RelativePath, prefix) {
			kept = append(kept, f)
		}
	}
	return kept, nil
}

// contains reports whether dir is parent or lies below it.
func contains(parent, dir string) bool {
	p, err := filepath.Abs(parent)
	if err != nil {
		return false
	}
	d, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(p, d)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// outputPrefix is the slash path of OutputDir below SourceRoot plus a
// trailing slash, or "" when the output lies elsewhere.
func (a *Assembler) outputPrefix() string {
	if a.opts.OutputDir == "" {
		return ""
	}
	src, err := filepath.Abs(a.opts.SourceRoot)
	if err != nil {
		return ""
	}
	out, err := filepath.Abs(a.opts.OutputDir)
	if err != nil {
		return ""
	}
	rel, err := filepath.Rel(src, out)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ""
	}
	return filepath.ToSlash(rel) + "/"
}

// ReadSource returns the raw bytes of f.
func (a *Assembler) ReadSource(f scan.SourceFile) ([]byte, error) {
	data, err := os.ReadFile(a.sourcePath(f))
	if err != nil {
		return nil, derrors.Read(f.RelativePath, err)
	}
	return data, nil
}

// Page assembles the complete HTML page of file against manifest. It has no
// side effects.
func (a *Assembler) Page(manifest []scan.SourceFile, file scan.SourceFile) (string, error) {
	doc, err := document.Load(a.opts.SourceRoot, file)
	if err != nil {
		return "", err
	}
	return a.assemble(manifest, file, doc)
}

func (a *Assembler) assemble(manifest []scan.SourceFile, file scan.SourceFile, doc document.ParsedDocument) (string, error) {
	rendered, err := a.renderer.Render(doc.Body)
	if err != nil {
		return "", derrors.Render(file.RelativePath, err)
	}

	model := nav.Build(manifest, file, rendered.Headings)
	sections := []nav.Heading{}
	if current, ok := model.Current(); ok {
		sections = current.Headings
	}

	pageData := PageData{
		Title:      doc.Title,
		Metadata:   doc.Metadata.Entries(),
		Site:       a.site,
		Nav:        model,
		Sections:   sections,
		Content:    template.HTML(rendered.HTML),
		BaseHref:   util.ComputeBaseHref(file.RelativePath),
		SourceHref: file.RelativePath,
		Styles:     a.styles,
		Script:     a.script,
	}

	var buf bytes.Buffer
	// "main" is the name of the template defined within the layout file.
	if err := a.tmpl.ExecuteTemplate(&buf, "main", pageData); err != nil {
		return "", derrors.Render(file.RelativePath, err)
	}
	return buf.String(), nil
}

// Build writes the whole site to dest: for every manifest entry the rendered
// page and a copy of the source at the same relative path, then the
// sentinel file. Unreadable or unrenderable files are logged, skipped and
// listed in the report; scan and write failures abort the build.
func (a *Assembler) Build(dest string, opts BuildOptions) (Report, error) {
	start := time.Now()
	report := Report{BuildID: uuid.NewString()}
	log := a.logger.With(logfields.BuildID(report.BuildID))

	manifest, err := a.Manifest()
	if err != nil {
		return report, err
	}
	log.Info("Starting site build",
		logfields.Path(dest),
		zap.Int("sources", len(manifest)))

	if contains(dest, a.opts.SourceRoot) {
		return report, derrors.Write(dest, fmt.Errorf("output directory contains the source root %s", a.opts.SourceRoot))
	}
	if err := os.MkdirAll(dest, 0755); err != nil {
		return report, derrors.Write(dest, err)
	}
	if opts.CleanDestination {
		log.Debug("Cleaning destination directory", logfields.Path(dest))
		if err := cleanDestination(dest); err != nil {
			return report, derrors.Write(dest, err)
		}
	}

	written := make(map[string]bool, 2*len(manifest))
	skip := func(f scan.SourceFile, err error) {
		kind, _ := derrors.KindOf(err)
		log.Warn("Skipping source file",
			logfields.File(f.RelativePath),
			logfields.Kind(string(kind)),
			logfields.Error(err))
		report.Skipped = append(report.Skipped, SkippedFile{Path: f.RelativePath, Err: err})
		a.recorder.IncPageSkipped(string(kind))
	}
	for _, f := range manifest {
		page, err := a.Page(manifest, f)
		if err == nil {
			err = a.writePage(dest, f, page)
		}
		if err != nil {
			if derrors.IsFatal(err) {
				return report, err
			}
			skip(f, err)
			continue
		}
		written[f.HTMLPath()] = true
		written[f.RelativePath] = true
		report.Pages++
		a.recorder.IncPageBuilt()
		log.Debug("Page written", logfields.File(f.HTMLPath()))
	}

	removed, err := a.pruneStale(dest, written)
	if err != nil {
		return report, err
	}
	if removed > 0 {
		log.Debug("Removed stale output", zap.Int("removed", removed))
	}

	sentinel := filepath.Join(dest, Sentinel)
	if err := os.WriteFile(sentinel, nil, 0644); err != nil {
		return report, derrors.Write(sentinel, err)
	}

	report.Duration = time.Since(start)
	a.recorder.ObserveBuildDuration(report.Duration)
	log.Info("Site build complete",
		logfields.Pages(report.Pages),
		logfields.Skipped(len(report.Skipped)),
		logfields.Duration(report.Duration))
	return report, nil
}

func (a *Assembler) sourcePath(f scan.SourceFile) string {
	return filepath.Join(a.opts.SourceRoot, filepath.FromSlash(f.RelativePath))
}

// writePage stores the rendered page and a copy of its source below dest.
// A source that can no longer be read is a read error; nothing is written
// for it.
func (a *Assembler) writePage(dest string, f scan.SourceFile, page string) error {
	src, err := os.Open(a.sourcePath(f))
	if err != nil {
		return derrors.Read(f.RelativePath, err)
	}
	defer src.Close()

	outputPath := filepath.Join(dest, filepath.FromSlash(f.HTMLPath()))
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return derrors.Write(outputPath, err)
	}
	if err := os.WriteFile(outputPath, []byte(page), 0644); err != nil {
		return derrors.Write(outputPath, err)
	}
	return copySource(src, filepath.Join(dest, filepath.FromSlash(f.RelativePath)))
}

// copySource mirrors one source file into the output tree.
func copySource(src io.Reader, destPath string) error {
	dst, err := os.Create(destPath)
	if err != nil {
		return derrors.Write(destPath, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return derrors.Write(destPath, err)
	}
	if err := dst.Close(); err != nil {
		return derrors.Write(destPath, err)
	}
	return nil
}

// pruneStale removes pages and source copies below dest that this build did
// not write, so renamed, deleted or now skipped documents disappear from the
// output. Other files are left alone.
func (a *Assembler) pruneStale(dest string, written map[string]bool) (int, error) {
	removed := 0
	err := filepath.Walk(dest, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		ext := filepath.Ext(p)
		if ext != ".html" && !strings.EqualFold(ext, a.opts.Extension) {
			return nil
		}
		rel, err := filepath.Rel(dest, p)
		if err != nil {
			return err
		}
		if written[filepath.ToSlash(rel)] {
			return nil
		}
		if err := os.Remove(p); err != nil {
			return err
		}
		removed++
		return nil
	})
	if err != nil {
		return removed, derrors.Write(dest, err)
	}
	return removed, nil
}

// cleanDestination removes everything inside dest but keeps dest itself.
func cleanDestination(dest string) error {
	entries, err := os.ReadDir(dest)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dest, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}
