package main

import (
	"fmt"
	"path/filepath"

	"github.com/cours-de-latin/enumeratio/internal/corpus"
)

// FoldCmd writes ASCII-folded copies of corpus files, keeping their names.
type FoldCmd struct {
	Inputs []string `arg:"" help:"Corpus files or directories" type:"existingpath"`
	Output string   `short:"o" required:"" help:"Output directory" type:"path"`
}

func (c *FoldCmd) Run() error {
	files, err := expandInputs(c.Inputs)
	if err != nil {
		return err
	}
	for _, f := range files {
		a, err := corpus.Load(f)
		if err != nil {
			return err
		}
		dst := filepath.Join(c.Output, filepath.Base(f))
		if err := corpus.Write(dst, corpus.Fold(a)); err != nil {
			return err
		}
		fmt.Printf("%s -> %s (%d lines)\n", f, dst, a.LineCount())
	}
	return nil
}
