package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerivePackageName(t *testing.T) {
	tests := map[string]string{
		"example.com/app/model":         "model",
		"github.com/emirpasic/gods/v2":  "gods",
		"gopkg.in/yaml.v3":              "yaml",
		"github.com/go-openapi/inflect": "inflect",
		"github.com/foo/my-api":         "myapi",
		"math/rand/v2":                  "rand",
		"example.com/app/api_v1":        "api_v1",
		"example.com/app/V2Types":       "v2types",
		"":                              "pkg",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, DerivePackageName(in))
		})
	}
}

func TestPackageNamesLookup(t *testing.T) {
	names := PackageNames{"example.com/app/internal/v1model": "model"}
	assert.Equal(t, "model", names.Lookup("example.com/app/internal/v1model"))
	assert.Equal(t, "api", names.Lookup("example.com/app/api"))

	var none PackageNames
	assert.Equal(t, "api", none.Lookup("example.com/app/api"))
}

func TestArtifactNaming(t *testing.T) {
	assert.Equal(t, "PersonDto.g.go", HintName("PersonDto", "go"))
	a := Artifact{HintName: "PersonDto.g.go", Namespace: "example.com/app/model"}
	assert.Equal(t, "example.com/app/model/PersonDto.g.go", a.Key())
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{
		Code:     "AS001",
		Message:  "boom",
		Location: Location{File: "m.go", Line: 4, Column: 2},
	}
	assert.Equal(t, "m.go:4:2: error AS001: boom", d.String())
}
