// Command cleandoc removes institutional boilerplate from DOCX documents.
//
//	cleandoc serve --port 5001
//	cleandoc clean informe.docx -o limpios/
package main

import (
	"os"

	"github.com/OmarSalvatierra99/cleandoc/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
