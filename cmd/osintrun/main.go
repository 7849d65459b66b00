// Command osintrun runs a single tool against a single query, bypassing the
// dispatch manager. Handy when debugging a tool installation.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/maildive/maildive/internal/model"
	"github.com/maildive/maildive/internal/osint"
)

func main() {
	if len(os.Args) != 3 {
		log.Fatal("usage: osintrun <maigret|sherlock|holehe> <query>")
	}

	kind, err := model.ParseToolKind(os.Args[1])
	if err != nil {
		log.Fatal(err)
	}

	var spec osint.Spec
	for _, s := range osint.DefaultSpecs() {
		if s.Kind == kind {
			spec = s
		}
	}

	root, err := os.UserHomeDir()
	if err != nil {
		log.Fatal(err)
	}
	a := osint.New(spec, root)

	ctx := context.Background()
	fmt.Printf("%+v\n", a.Probe(ctx))

	res := a.Run(ctx, model.ScanJob{Query: os.Args[2], ScanID: "osintrun"})
	fmt.Printf("%+v\n", res)
}
