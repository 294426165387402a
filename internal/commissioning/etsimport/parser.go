package etsimport

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// Reader configuration constants.
const (
	// ProjectExtension is the required file name suffix.
	ProjectExtension = ".knxproj"

	// MaxFileSize is the maximum allowed archive size (100MB).
	MaxFileSize = 100 * 1024 * 1024
)

// Archive entries holding the project metadata and the installation.
var (
	reProjectInfoEntry  = regexp.MustCompile(`P-[^/]+/project\.xml$`)
	reInstallationEntry = regexp.MustCompile(`P-[^/]+/0\.xml$`)
)

// XPath expressions for the sections the converter needs.
var (
	xpProjectInfo  = xpath.MustCompile("//Project/ProjectInformation")
	xpInstallation = xpath.MustCompile("//Project/Installations/Installation")
	xpGroupRanges  = xpath.MustCompile("GroupAddresses/GroupRanges")
	xpLocations    = xpath.MustCompile("Locations")
	xpGARefs       = xpath.MustCompile(".//GroupAddressRef")
)

// Logger is the optional logging interface used by Reader.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
}

// Reader extracts project trees from .knxproj archives.
type Reader struct {
	logger Logger
}

// NewReader creates a Reader.
func NewReader() *Reader {
	return &Reader{}
}

// SetLogger sets a logger for debug output.
func (r *Reader) SetLogger(logger Logger) {
	r.logger = logger
}

func (r *Reader) debug(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}

// ReadFile reads an ETS project from disk. The file name must end in
// .knxproj.
func (r *Reader) ReadFile(path string) (*Project, error) {
	if !strings.HasSuffix(path, ProjectExtension) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidExtension, path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading project file: %w", err)
	}
	if info.Size() > MaxFileSize {
		return nil, ErrFileTooLarge
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project file: %w", err)
	}
	return r.ReadBytes(data)
}

// ReadBytes reads an ETS project from an in-memory archive.
func (r *Reader) ReadBytes(data []byte) (*Project, error) {
	if len(data) > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptArchive, err)
	}

	var infoXML, installationXML []byte
	for _, file := range archive.File {
		switch {
		case reProjectInfoEntry.MatchString(file.Name):
			r.debug("found project metadata", "entry", file.Name)
			if infoXML, err = readZipFile(file); err != nil {
				return nil, fmt.Errorf("reading %s: %w", file.Name, err)
			}
		case reInstallationEntry.MatchString(file.Name):
			r.debug("found installation", "entry", file.Name)
			if installationXML, err = readZipFile(file); err != nil {
				return nil, fmt.Errorf("reading %s: %w", file.Name, err)
			}
		}
	}

	if infoXML == nil {
		return nil, fmt.Errorf("%w: project.xml", ErrMissingProjectFile)
	}
	if installationXML == nil {
		return nil, fmt.Errorf("%w: 0.xml", ErrMissingProjectFile)
	}

	project := &Project{}
	if project.Info, err = ParseProjectInfo(bytes.NewReader(infoXML)); err != nil {
		return nil, err
	}
	if project.GroupRanges, project.Locations, err = ParseInstallation(bytes.NewReader(installationXML)); err != nil {
		return nil, err
	}
	return project, nil
}

// ParseProjectInfo parses project.xml. It returns nil, nil when the document
// has no ProjectInformation element.
func ParseProjectInfo(rd io.Reader) (*ProjectInfo, error) {
	doc, err := xmlquery.Parse(rd)
	if err != nil {
		return nil, fmt.Errorf("%w: project.xml: %w", ErrInvalidFile, err)
	}
	node := xmlquery.QuerySelector(doc, xpProjectInfo)
	if node == nil {
		return nil, nil
	}
	return &ProjectInfo{
		Name:              node.SelectAttr("Name"),
		GroupAddressStyle: node.SelectAttr("GroupAddressStyle"),
	}, nil
}

// ParseInstallation parses 0.xml and returns the group range tree and the
// building structure of the first installation. Either may be nil when the
// element is absent.
func ParseInstallation(rd io.Reader) (*GroupRange, *Space, error) {
	doc, err := xmlquery.Parse(rd)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: 0.xml: %w", ErrInvalidFile, err)
	}
	installation := xmlquery.QuerySelector(doc, xpInstallation)
	if installation == nil {
		return nil, nil, nil
	}

	var ranges *GroupRange
	if node := xmlquery.QuerySelector(installation, xpGroupRanges); node != nil {
		root, err := convertGroupRange(node)
		if err != nil {
			return nil, nil, err
		}
		ranges = &root
	}

	var locations *Space
	if node := xmlquery.QuerySelector(installation, xpLocations); node != nil {
		root := convertSpace(node)
		locations = &root
	}

	return ranges, locations, nil
}

// convertGroupRange converts a GroupRange (or the GroupRanges root) element.
func convertGroupRange(node *xmlquery.Node) (GroupRange, error) {
	gr := GroupRange{Name: node.SelectAttr("Name")}
	for _, child := range elementChildren(node) {
		switch child.Data {
		case "GroupRange":
			sub, err := convertGroupRange(child)
			if err != nil {
				return GroupRange{}, err
			}
			gr.Ranges = append(gr.Ranges, sub)
		case "GroupAddress":
			ga, err := convertGroupAddress(child)
			if err != nil {
				return GroupRange{}, err
			}
			gr.Addresses = append(gr.Addresses, ga)
		}
	}
	return gr, nil
}

func convertGroupAddress(node *xmlquery.Node) (GroupAddress, error) {
	raw := node.SelectAttr("Address")
	addr, err := strconv.ParseUint(raw, 10, 16)
	if err != nil {
		return GroupAddress{}, fmt.Errorf("%w: group address %q has invalid address %q: %w",
			ErrInvalidFile, node.SelectAttr("Id"), raw, err)
	}
	return GroupAddress{
		ID:            node.SelectAttr("Id"),
		Name:          node.SelectAttr("Name"),
		Description:   node.SelectAttr("Description"),
		Address:       uint16(addr),
		DatapointType: node.SelectAttr("DatapointType"),
	}, nil
}

// convertSpace converts a Space (or the Locations root) element.
func convertSpace(node *xmlquery.Node) Space {
	space := Space{
		Type: node.SelectAttr("Type"),
		Name: node.SelectAttr("Name"),
	}
	for _, child := range elementChildren(node) {
		switch child.Data {
		case "Space":
			space.Spaces = append(space.Spaces, convertSpace(child))
		case "Function":
			space.Functions = append(space.Functions, convertFunction(child))
		}
	}
	return space
}

func convertFunction(node *xmlquery.Node) Function {
	fn := Function{
		ID:   node.SelectAttr("Id"),
		Name: node.SelectAttr("Name"),
		Type: node.SelectAttr("Type"),
	}
	for _, ref := range xmlquery.QuerySelectorAll(node, xpGARefs) {
		fn.GroupAddressRefs = append(fn.GroupAddressRefs, ref.SelectAttr("RefId"))
	}
	return fn
}

func elementChildren(node *xmlquery.Node) []*xmlquery.Node {
	var children []*xmlquery.Node
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			children = append(children, child)
		}
	}
	return children
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening zip file: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxFileSize))
	if err != nil {
		return nil, fmt.Errorf("reading zip file: %w", err)
	}
	return data, nil
}
