package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gradient-here/WorkFrame-Website-3i/pkg/core/attribution"
	"github.com/gradient-here/WorkFrame-Website-3i/pkg/core/domain"
)

// Operator tool for working with attribution references: mint one for a
// test purchase, decode one pulled from a provider dashboard, or list the
// product allowlist.
func main() {
	encodeCmd := flag.NewFlagSet("encode", flag.ExitOnError)
	encodeProduct := encodeCmd.String("product", "", "product slug")
	encodeUser := encodeCmd.String("user", "", "optional user reference")

	decodeCmd := flag.NewFlagSet("decode", flag.ExitOnError)
	decodeRef := decodeCmd.String("ref", "", "client reference to decode")

	if len(os.Args) < 2 {
		fmt.Println("expected 'encode', 'decode' or 'products' subcommands")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "encode":
		encodeCmd.Parse(os.Args[2:])
		if *encodeProduct == "" {
			log.Fatal("-product is required")
		}
		if _, ok := domain.ProductBySlug(*encodeProduct); !ok {
			log.Fatalf("unknown product %q", *encodeProduct)
		}
		record := attribution.NewRecord(*encodeProduct, *encodeUser)
		ref, err := attribution.EncodeReference(record)
		if err != nil {
			log.Fatalf("encode reference: %v", err)
		}
		fmt.Println(ref)

	case "decode":
		decodeCmd.Parse(os.Args[2:])
		if *decodeRef == "" {
			log.Fatal("-ref is required")
		}
		ref := attribution.DecodeReference(*decodeRef)
		if ref == nil {
			log.Fatal("reference did not decode")
		}
		out, _ := json.MarshalIndent(ref, "", "  ")
		fmt.Println(string(out))

	case "products":
		for _, slug := range domain.ProductSlugs() {
			product, _ := domain.ProductBySlug(slug)
			line := fmt.Sprintf("%-16s %s", slug, product.URL)
			if price, ok := domain.PriceBySlug(slug); ok {
				line += fmt.Sprintf("  (%d %s)", price.AmountCents, price.Currency)
			}
			fmt.Println(line)
		}

	default:
		fmt.Println("expected 'encode', 'decode' or 'products' subcommands")
		os.Exit(1)
	}
}
