package theme233

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type yamlDefinition struct {
	Fields map[string]*FieldSpec `yaml:"fields"`
}

// LoadYAMLDefinition 从 YAML 读取注入定义
//
//	fields:
//	  title:
//	    name: caption
//	  background:
//	    key: Common.background
//	    converter: hexcolor
//	  border: {}
func LoadYAMLDefinition(source string, r io.Reader) (*MapDefinition, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var doc yamlDefinition
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, &DefinitionLoadError{Source: source, Err: err}
	}
	if len(doc.Fields) == 0 {
		return nil, &DefinitionLoadError{Source: source, Err: fmt.Errorf("没有定义任何字段")}
	}
	fields := make(map[string]FieldSpec, len(doc.Fields))
	for name, spec := range doc.Fields {
		if spec == nil {
			spec = &FieldSpec{}
		}
		fields[name] = *spec
	}
	return &MapDefinition{fields: fields}, nil
}

// LoadYAMLDefinitionFile 从 YAML 文件读取注入定义
func LoadYAMLDefinitionFile(path string) (*MapDefinition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DefinitionLoadError{Source: path, Err: err}
	}
	defer f.Close()
	return LoadYAMLDefinition(path, f)
}
