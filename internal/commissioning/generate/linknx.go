package generate

import (
	"bytes"
	"encoding/xml"
	"sort"
	"strings"

	"github.com/nerrad567/ets2ha/internal/commissioning/model"
	"github.com/nerrad567/ets2ha/internal/commissioning/override"
)

// linknxIndent prefixes every descriptor so the fragment can be pasted into
// the <objects> section of a linknx configuration.
const linknxIndent = "        "

// Descriptor is one linknx <object> definition.
type Descriptor struct {
	Type    string // datapoint, e.g. "1.001"
	ID      string // "id_" + address with "/" replaced by "_"
	Address string
	Label   string
}

// Fragment is the ordered list of descriptors produced by Linknx.
type Fragment []Descriptor

// Render writes one <object> element per line. Lines are joined with "\n";
// there is no enclosing element and no trailing newline.
func (f Fragment) Render() ([]byte, error) {
	var buf bytes.Buffer
	for i, d := range f {
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(linknxIndent)
		buf.WriteString(`<object type="`)
		if err := xml.EscapeText(&buf, []byte(d.Type)); err != nil {
			return nil, err
		}
		buf.WriteString(`" id="`)
		if err := xml.EscapeText(&buf, []byte(d.ID)); err != nil {
			return nil, err
		}
		buf.WriteString(`" gad="`)
		if err := xml.EscapeText(&buf, []byte(d.Address)); err != nil {
			return nil, err
		}
		buf.WriteString(`" init="request">`)
		if err := xml.EscapeText(&buf, []byte(d.Label)); err != nil {
			return nil, err
		}
		buf.WriteString(`</object>`)
	}
	return buf.Bytes(), nil
}

// Linknx generates a Fragment from the group address registry.
type Linknx struct {
	logger Logger
}

// NewLinknx creates the linknx generator.
func NewLinknx(logger Logger) *Linknx {
	return &Linknx{logger: orNoop(logger)}
}

// Format implements Generator.
func (g *Linknx) Format() string { return FormatLinknx }

// Generate emits one descriptor per registered address, sorted by the
// formatted address string. The comparison is lexicographic, so "1/10/0"
// sorts before "1/2/0".
func (g *Linknx) Generate(m *model.Model) (Artifact, Statistics, error) {
	gas := m.GroupAddresses()
	sort.SliceStable(gas, func(i, j int) bool {
		return gas[i].Address() < gas[j].Address()
	})

	frag := make(Fragment, 0, len(gas))
	for _, ga := range gas {
		label, ok := ga.Custom.String(override.KeyLinknxDispName)
		if !ok {
			label = ga.Name()
		}
		frag = append(frag, Descriptor{
			Type:    ga.Datapoint().String(),
			ID:      "id_" + strings.ReplaceAll(ga.Address(), "/", "_"),
			Address: ga.Address(),
			Label:   label,
		})
		g.logger.Debug("linknx object", "address", ga.Address(), "label", label)
	}
	return frag, Statistics{Emitted: len(frag)}, nil
}
