package config

import (
	"embed"
)

//go:embed framekit.yaml
//go:embed all:jsx/*
var embeddedFiles embed.FS

func ConfigFS() embed.FS {
	return embeddedFiles
}

// DefaultConfig returns the commented framekit.yaml written by init-config
// when the user accepts every default.
func DefaultConfig() []byte {
	data, _ := embeddedFiles.ReadFile("framekit.yaml")
	return data
}
