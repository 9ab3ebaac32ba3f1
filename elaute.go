package elaute

import (
	_ "embed"
)

//go:embed README.md
var Readme string
