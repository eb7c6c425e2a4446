package storage

import (
	"bytes"
	"io"
	"text/template"

	"github.com/golang-migrate/migrate/v4/source"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

const templateDelimiter = "{{"

// DialectSource renders migration files as text/template with MigrationTemplateData before handing them to
// migrate, so a single migration can branch between MySQL and SQLite:
//
//	{{if eq .Dialect "mysql"}}
//	  createdAt DATETIME(6) NOT NULL,
//	{{else}}
//	  createdAt DATETIME NOT NULL,
//	{{end}}
type DialectSource struct {
	source.Driver
	dialect string
}

// MigrationTemplateData is what migration templates are executed with
type MigrationTemplateData struct {
	Dialect string
}

// NewDialectSource opens the migration location, e.g. file://migration/sqls, for the dialect
func NewDialectSource(sourceURL string, dialect string) (*DialectSource, error) {
	driver, err := source.Open(sourceURL)
	if err != nil {
		return nil, err
	}
	return &DialectSource{Driver: driver, dialect: dialect}, nil
}

// ReadUp renders the up migration of the version
func (dialectSource *DialectSource) ReadUp(version uint) (io.ReadCloser, string, error) {
	return dialectSource.render(dialectSource.Driver.ReadUp(version))
}

// ReadDown renders the down migration of the version
func (dialectSource *DialectSource) ReadDown(version uint) (io.ReadCloser, string, error) {
	return dialectSource.render(dialectSource.Driver.ReadDown(version))
}

func (dialectSource *DialectSource) render(body io.ReadCloser, identifier string, err error) (io.ReadCloser, string, error) {
	if err != nil {
		return nil, "", err
	}
	defer body.Close()
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, "", err
	}
	if !bytes.Contains(raw, []byte(templateDelimiter)) {
		return io.NopCloser(bytes.NewReader(raw)), identifier, nil
	}
	migrationTemplate, err := template.New(identifier).Parse(string(raw))
	if err != nil {
		return nil, "", err
	}
	rendered := &bytes.Buffer{}
	if err = migrationTemplate.Execute(rendered, MigrationTemplateData{Dialect: dialectSource.dialect}); err != nil {
		return nil, "", err
	}
	return io.NopCloser(rendered), identifier, nil
}
