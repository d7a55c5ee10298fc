// Package offline provides what a client needs to keep working without connectivity:
// the bundle of cached assets & sample documents, and the queue of submissions awaiting delivery.
package offline

import (
	"encoding/json"
	"sort"

	"github.com/pkg/errors"

	"github.com/trezcool/mwalimu/core"
	"github.com/trezcool/mwalimu/core/lessonplan"
)

const (
	CacheName        = "teachers-assistant-v1"
	OfflineCacheName = "teachers-assistant-offline-v1"

	documentsPath = "/api/offline/documents/"
)

var (
	// StaticAssets are cached by clients on install.
	StaticAssets = []string{
		"/",
		"/index.html",
		"/src/styles/main.css",
		"/src/scripts/app.js",
		"/src/scripts/charts.js",
		"/src/scripts/lessonGenerator.js",
		"https://fonts.googleapis.com/css2?family=Inter:wght@300;400;500;600;700&display=swap",
	}

	// errors
	ErrDocumentNotFound = core.NewNotFoundError("offline document not found")
)

type (
	// Document is a sample document available without connectivity.
	Document struct {
		ID      string          `json:"id"`
		Title   string          `json:"title"`
		Subject string          `json:"subject,omitempty"`
		Grade   string          `json:"grade,omitempty"`
		Type    string          `json:"type"`
		Content json.RawMessage `json:"content"`
	}

	DocumentRef struct {
		ID    string `json:"id"`
		Title string `json:"title"`
		URL   string `json:"url"`
	}

	// Manifest describes everything a client has to cache.
	Manifest struct {
		CacheName        string        `json:"cacheName"`
		OfflineCacheName string        `json:"offlineCacheName"`
		Assets           []string      `json:"assets"`
		Documents        []DocumentRef `json:"documents"`
	}

	// Library is the fixed set of offline documents. It is built once and never mutated.
	Library struct {
		docs map[string]Document
	}
)

// worksheet is the content of the sample worksheet resource.
type worksheet struct {
	Instructions string   `json:"instructions"`
	Exercises    []string `json:"exercises"`
}

// NewLibrary builds the sample documents; the sample lesson plan is generated with gen.
func NewLibrary(gen *lessonplan.Generator) (*Library, error) {
	plan, err := gen.Generate(lessonplan.Request{Subject: string(lessonplan.Mathematics), Grade: 4, Topic: "Fractions", Duration: 40})
	if err != nil {
		return nil, errors.Wrap(err, "generating sample lesson plan")
	}
	planJSON, err := json.Marshal(plan)
	if err != nil {
		return nil, errors.Wrap(err, "encoding sample lesson plan")
	}
	sheetJSON, err := json.Marshal(worksheet{
		Instructions: "Use stones, seeds or bottle tops to help you. Show your working.",
		Exercises: []string{
			"Share 12 stones equally between 4 friends. What fraction of the stones does each friend get?",
			"Shade 3/8 of a shape drawn with 8 equal parts.",
			"Which is bigger: 2/5 or 3/10? Explain using drawings.",
			"Write 0.5, 0.25 and 0.75 as fractions.",
			"Mama cut a mango into 6 equal pieces and ate 2. What fraction is left?",
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "encoding sample worksheet")
	}

	docs := []Document{
		{
			ID:      "lesson-math-fractions",
			Title:   "Introduction to Fractions",
			Subject: lessonplan.Mathematics.Title(),
			Grade:   "Grade 4",
			Type:    "lesson",
			Content: planJSON,
		},
		{
			ID:      "resource-math-worksheets",
			Title:   "Mathematics Worksheets Grade 4",
			Subject: lessonplan.Mathematics.Title(),
			Grade:   "Grade 4",
			Type:    "worksheet",
			Content: sheetJSON,
		},
	}

	lib := &Library{docs: make(map[string]Document, len(docs))}
	for _, d := range docs {
		lib.docs[d.ID] = d
	}
	return lib, nil
}

func (lib *Library) Document(id string) (Document, error) {
	d, ok := lib.docs[id]
	if !ok {
		return Document{}, ErrDocumentNotFound
	}
	return d, nil
}

func (lib *Library) Manifest() Manifest {
	refs := make([]DocumentRef, 0, len(lib.docs))
	for _, d := range lib.docs {
		refs = append(refs, DocumentRef{ID: d.ID, Title: d.Title, URL: documentsPath + d.ID})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].ID < refs[j].ID })

	return Manifest{
		CacheName:        CacheName,
		OfflineCacheName: OfflineCacheName,
		Assets:           append([]string(nil), StaticAssets...),
		Documents:        refs,
	}
}
