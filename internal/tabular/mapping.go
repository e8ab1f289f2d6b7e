package tabular

import (
	"os"

	"github.com/goccy/go-yaml"

	"github.com/faxhealth/carebook/pkg/errors"
)

// mappingFile is the YAML shape of a column-mapping override:
//
//	columns:
//	  code: billing_code
//	  fax: fax_numbers
type mappingFile struct {
	Columns map[string]string `yaml:"columns"`
}

// LoadMapping reads a source-to-target column mapping from a YAML file,
// replacing the built-in default mapping.
func LoadMapping(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var file mappingFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	if len(file.Columns) == 0 {
		return nil, errors.NewParseError("yaml", path, "mapping has no columns", nil)
	}
	return file.Columns, nil
}
