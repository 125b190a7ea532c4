package template

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	templateerrors "hrm-system/internal/template/errors"

	"go.uber.org/zap"
)

// templateFiles maps a document type onto its template file inside the
// templates directory. Unknown types fall back to the generic template.
var templateFiles = map[string]string{
	"work-certificate":           "work-certificate.txt",
	"salary-certificate":         "salary-certificate.txt",
	"vacation-certificate":       "vacation-certificate.txt",
	"sick-leave-certificate":     "sick-leave-certificate.txt",
	"personal-leave-certificate": "personal-leave-certificate.txt",
	"employment-extract":         "employment-extract.txt",
	"contract-copy":              "contract-copy.txt",
	"other":                      "other.txt",
}

const fallbackTemplate = "other.txt"

// Artifact is the rendered output of GenerateDocument.
type Artifact struct {
	FilePath string
	FileURL  string
	Content  string
}

type Engine struct {
	templatesDir string
	storageDir   string
	baseURL      string
	logger       *zap.Logger
}

func NewEngine(templatesDir, storageDir, baseURL string, logger ...*zap.Logger) *Engine {
	l := zap.L().Named("template.engine")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("template.engine")
	}
	return &Engine{
		templatesDir: templatesDir,
		storageDir:   storageDir,
		baseURL:      strings.TrimRight(baseURL, "/"),
		logger:       l,
	}
}

// TemplatePath returns the deterministic template location for a document type.
func (e *Engine) TemplatePath(docType string) string {
	file, ok := templateFiles[docType]
	if !ok {
		file = fallbackTemplate
	}
	return filepath.Join(e.templatesDir, file)
}

// LoadTemplate reads the template for a document type from disk.
func (e *Engine) LoadTemplate(docType string) (string, error) {
	path := e.TemplatePath(docType)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			e.logger.Warn("template file missing",
				zap.String("doc_type", docType),
				zap.String("path", path),
			)
			return "", templateerrors.ErrTemplateNotFound
		}
		return "", err
	}
	return string(raw), nil
}

// FillTemplate substitutes every {key} token with the stringified value from
// data; nil values become empty strings. Tokens with no matching key stay
// untouched so a partially filled template still renders.
func FillTemplate(template string, data map[string]any) string {
	out := template
	for key, value := range data {
		token := "{" + key + "}"
		out = strings.ReplaceAll(out, token, stringify(value))
	}
	return out
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case *string:
		if t == nil {
			return ""
		}
		return *t
	default:
		return fmt.Sprintf("%v", v)
	}
}

// GenerateDocument renders the template for docType with data and writes the
// result to a uniquely named file keyed by the document id and a timestamp.
func (e *Engine) GenerateDocument(docType string, data map[string]any, documentID string) (*Artifact, error) {
	tpl, err := e.LoadTemplate(docType)
	if err != nil {
		return nil, err
	}

	content := FillTemplate(tpl, data)

	if err := os.MkdirAll(e.storageDir, 0o755); err != nil {
		return nil, err
	}

	fileName := fmt.Sprintf("%s_%d.txt", documentID, time.Now().Unix())
	filePath := filepath.Join(e.storageDir, fileName)
	if err := os.WriteFile(filePath, []byte(content), 0o644); err != nil {
		return nil, err
	}

	e.logger.Info("document artifact generated",
		zap.String("doc_type", docType),
		zap.String("document_id", documentID),
		zap.String("file_path", filePath),
	)

	return &Artifact{
		FilePath: filePath,
		FileURL:  e.baseURL + "/" + fileName,
		Content:  content,
	}, nil
}

// DeleteDocument removes a rendered artifact. Missing files are not an error.
func (e *Engine) DeleteDocument(filePath string) error {
	if filePath == "" {
		return nil
	}
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// TemplateExists reports whether a template file is present for the type.
func (e *Engine) TemplateExists(docType string) bool {
	_, err := os.Stat(e.TemplatePath(docType))
	return err == nil
}

// AvailableTemplates lists document types whose template file is present,
// sorted for stable output.
func (e *Engine) AvailableTemplates() []string {
	types := make([]string, 0, len(templateFiles))
	for docType := range templateFiles {
		if e.TemplateExists(docType) {
			types = append(types, docType)
		}
	}
	sort.Strings(types)
	return types
}
