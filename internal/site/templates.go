package site

import (
	"embed"
	"fmt"
	"html/template"
	"path/filepath"
	"strings"
)

//go:embed theme
var themeFS embed.FS

var templateFiles = []string{"layout.html", "header.html", "footer.html"}

var templateFuncs = template.FuncMap{
	"link": link,
}

// LoadTemplates parses the layout, header and footer templates. An empty
// templateDir selects the embedded default theme; otherwise all three files
// must exist in templateDir and define "main", "header" and "footer".
func LoadTemplates(templateDir string) (*template.Template, error) {
	tmpl := template.New("layout.html").Funcs(templateFuncs)
	if templateDir == "" {
		patterns := make([]string, len(templateFiles))
		for i, name := range templateFiles {
			patterns[i] = "theme/" + name
		}
		return tmpl.ParseFS(themeFS, patterns...)
	}

	paths := make([]string, len(templateFiles))
	for i, name := range templateFiles {
		paths[i] = filepath.Join(templateDir, name)
	}
	parsed, err := tmpl.ParseFiles(paths...)
	if err != nil {
		return nil, err
	}
	if parsed.Lookup("main") == nil {
		return nil, fmt.Errorf("templates in %s do not define \"main\"", templateDir)
	}
	return parsed, nil
}

func themeAsset(name string) (string, error) {
	data, err := themeFS.ReadFile("theme/" + name)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// link resolves a navigation href against the page's base href. Site-root
// and fragment-only hrefs are returned as they are.
func link(base, href string) string {
	if strings.HasPrefix(href, "/") || strings.HasPrefix(href, "#") {
		return href
	}
	return base + href
}
