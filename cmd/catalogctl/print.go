package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/jmanzanog/instrument-catalog/internal/domain"
)

func printTable(w io.Writer, records []domain.Instrument) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No instruments")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tCODE\tNAME\tADDED")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Type, r.Code, r.Name, r.AddedAt.Format(time.DateOnly))
	}
	_ = tw.Flush()
}

func printDetail(w io.Writer, r domain.Instrument) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", r.ID)
	fmt.Fprintf(tw, "Type:\t%s\n", r.Type)
	fmt.Fprintf(tw, "Code:\t%s\n", r.Code)
	fmt.Fprintf(tw, "Name:\t%s\n", r.Name)
	if r.Description != "" {
		fmt.Fprintf(tw, "Description:\t%s\n", r.Description)
	}
	fmt.Fprintf(tw, "Added:\t%s\n", r.AddedAt.Format(time.RFC3339))
	_ = tw.Flush()
}
