package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/xonecas/typedesc/internal/describe"
	"github.com/xonecas/typedesc/internal/engine"
	"github.com/xonecas/typedesc/internal/symbols"
)

var (
	describeBrief       bool
	describeFormat      string
	describeFileSummary bool
	describeExplain     bool
)

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Describe the type declaration under the caret",
	Long: `Describe prints the detailed report of the C# type declaration enclosing the
caret: its summary, members and method call contracts. Use --brief for the
summary paragraph alone or --file-summary to describe the whole file.`,
	RunE: runDescribe,
}

func init() {
	addCaretFlags(describeCmd)
	describeCmd.Flags().BoolVar(&describeBrief, "brief", false, "Print only the summary paragraph")
	describeCmd.Flags().StringVar(&describeFormat, "format", "text", "Output format: text or yaml")
	describeCmd.Flags().BoolVar(&describeFileSummary, "file-summary", false, "Describe the whole file")
	describeCmd.Flags().BoolVar(&describeExplain, "explain", false, "Also ask the configured model for an explanation")
}

func runDescribe(cmd *cobra.Command, args []string) error {
	if describeFormat != "text" && describeFormat != "yaml" {
		return fmt.Errorf("unknown format %q (want text or yaml)", describeFormat)
	}
	a, err := openForCaret(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := commandContext(cmd)
	caret := currentCaret()

	if describeFileSummary {
		text, err := a.engine.DescribeFile(ctx, caret, describeExplain)
		if err != nil {
			return report(a.sink, err)
		}
		return a.sink.Show("File summary", text)
	}

	var d *engine.Description
	if describeExplain {
		d, err = a.engine.DescribeAndExplain(ctx, caret)
	} else {
		d, err = a.engine.Describe(ctx, caret)
	}
	if err != nil {
		return report(a.sink, err)
	}

	if describeFormat == "yaml" {
		return writeSymbolYAML(cmd.OutOrStdout(), d)
	}
	text := d.Report
	if describeBrief {
		text = d.Summary
	}
	if err := a.sink.Show(d.Symbol.Name, text); err != nil {
		return err
	}
	if describeExplain && d.Insight != "" {
		return a.sink.Show("AI insight", d.Insight)
	}
	return nil
}

type symbolDump struct {
	Name       string         `yaml:"name"`
	Kind       string         `yaml:"kind"`
	Visibility string         `yaml:"visibility,omitempty"`
	Namespace  string         `yaml:"namespace,omitempty"`
	Container  string         `yaml:"containing_type,omitempty"`
	BaseType   string         `yaml:"base_type,omitempty"`
	Interfaces []string       `yaml:"interfaces,omitempty"`
	TypeParams []string       `yaml:"type_parameters,omitempty"`
	Attributes []string       `yaml:"attributes,omitempty"`
	Modifiers  []string       `yaml:"modifiers,omitempty"`
	Documented bool           `yaml:"documented"`
	Summary    string         `yaml:"summary"`
	Members    []memberDump   `yaml:"members,omitempty"`
	Counts     symbols.Counts `yaml:"counts"`
	Revision   int            `yaml:"revision"`
	Line       int            `yaml:"line"`
	Column     int            `yaml:"column"`
}

type memberDump struct {
	Kind       string `yaml:"kind"`
	Name       string `yaml:"name"`
	Type       string `yaml:"type,omitempty"`
	Visibility string `yaml:"visibility,omitempty"`
	Static     bool   `yaml:"static,omitempty"`
	Signature  string `yaml:"signature,omitempty"`
	Value      string `yaml:"value,omitempty"`
}

// memberDumper collects members in declaration order.
type memberDumper struct {
	out []memberDump
}

func (d *memberDumper) add(kind string, info symbols.MemberInfo) *memberDump {
	d.out = append(d.out, memberDump{
		Kind:       kind,
		Name:       info.Name,
		Type:       info.Type,
		Visibility: info.Visibility.String(),
		Static:     info.IsStatic,
	})
	return &d.out[len(d.out)-1]
}

func (d *memberDumper) VisitProperty(p *symbols.Property) {
	kind := "property"
	if p.IsIndexer {
		kind = "indexer"
	}
	d.add(kind, p.MemberInfo)
}

func (d *memberDumper) VisitMethod(m *symbols.Method) {
	d.add("method", m.MemberInfo).Signature = describe.Signature(m)
}

func (d *memberDumper) VisitField(f *symbols.Field) { d.add("field", f.MemberInfo) }

func (d *memberDumper) VisitConstField(c *symbols.ConstField) {
	d.add("constant", c.MemberInfo).Value = c.Value
}

func (d *memberDumper) VisitEvent(e *symbols.Event) { d.add("event", e.MemberInfo) }

func writeSymbolYAML(w io.Writer, d *engine.Description) error {
	sym := d.Symbol
	var members memberDumper
	for _, m := range sym.Members {
		m.Accept(&members)
	}
	dump := symbolDump{
		Name:       sym.Name,
		Kind:       sym.Kind.String(),
		Visibility: sym.Visibility.String(),
		Namespace:  sym.Namespace,
		Container:  sym.ContainingType,
		BaseType:   sym.BaseType,
		Interfaces: sym.Interfaces,
		TypeParams: sym.TypeParameters,
		Attributes: sym.Attributes,
		Modifiers:  sym.Modifiers,
		Documented: sym.HasDocComment,
		Summary:    d.Summary,
		Members:    members.out,
		Counts:     symbols.CountMembers(sym.Members),
		Revision:   d.Tree.Revision,
	}
	pos := d.Decl.Position()
	dump.Line, dump.Column = pos.Line, pos.Column
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(dump); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
