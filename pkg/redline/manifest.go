package redline

import (
	"bytes"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// Well-known part names.
const (
	contentTypesPart    = "[Content_Types].xml"
	documentPart        = "word/document.xml"
	documentRelsPart    = "word/_rels/document.xml.rels"
	defaultCommentsPart = "word/comments.xml"
)

const (
	contentTypesNamespace  = "http://schemas.openxmlformats.org/package/2006/content-types"
	relationshipsNamespace = "http://schemas.openxmlformats.org/package/2006/relationships"

	commentsContentType      = "application/vnd.openxmlformats-officedocument.wordprocessingml.comments+xml"
	commentsRelationshipType = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/comments"
)

const xmlDeclaration = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

var (
	typesExpr         = xpath.MustCompile("/Types")
	overrideExpr      = xpath.MustCompile("/Types/Override")
	relationshipsExpr = xpath.MustCompile("/Relationships")
	relationshipExpr  = xpath.MustCompile("/Relationships/Relationship")
)

// emptyContentTypes is used when a package has no content-type manifest.
var emptyContentTypes = xmlDeclaration +
	`<Types xmlns="` + contentTypesNamespace + `">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`</Types>`

// emptyRelationships is used when the document has no relationship manifest.
var emptyRelationships = xmlDeclaration +
	`<Relationships xmlns="` + relationshipsNamespace + `"></Relationships>`

func parseManifest(data []byte, name string) (*xmlquery.Node, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, NewDocumentError(CodeParseError, "parse", name, err)
	}
	return doc, nil
}

// ensureContentTypeOverride makes sure the content-type manifest declares
// contentType for partName. It reports whether the manifest changed.
func ensureContentTypeOverride(data []byte, partName, contentType string) ([]byte, bool, error) {
	if len(data) == 0 {
		data = []byte(emptyContentTypes)
	}
	doc, err := parseManifest(data, contentTypesPart)
	if err != nil {
		return nil, false, err
	}

	want := "/" + strings.TrimPrefix(partName, "/")
	for _, n := range xmlquery.QuerySelectorAll(doc, overrideExpr) {
		// part names compare case-insensitively in OPC
		if strings.EqualFold(n.SelectAttr("PartName"), want) {
			return data, false, nil
		}
	}

	root := xmlquery.QuerySelector(doc, typesExpr)
	if root == nil {
		return nil, false, &DocumentError{Code: CodeParseError, Operation: "parse", Path: contentTypesPart, Message: "missing Types element"}
	}
	override := &xmlquery.Node{Type: xmlquery.ElementNode, Data: "Override"}
	xmlquery.AddAttr(override, "PartName", want)
	xmlquery.AddAttr(override, "ContentType", contentType)
	xmlquery.AddChild(root, override)

	return []byte(doc.OutputXML(true)), true, nil
}

// ensureRelationship makes sure the relationship manifest holds exactly one
// relationship of relType. A new relationship gets the id rId{max+1}. It
// returns the relationship id and whether the manifest changed.
func ensureRelationship(data []byte, relType, target string) ([]byte, string, bool, error) {
	if len(data) == 0 {
		data = []byte(emptyRelationships)
	}
	doc, err := parseManifest(data, documentRelsPart)
	if err != nil {
		return nil, "", false, err
	}

	maxID := 0
	for _, n := range xmlquery.QuerySelectorAll(doc, relationshipExpr) {
		if n.SelectAttr("Type") == relType {
			return data, n.SelectAttr("Id"), false, nil
		}
		if id, ok := strings.CutPrefix(n.SelectAttr("Id"), "rId"); ok {
			if v, err := strconv.Atoi(id); err == nil && v > maxID {
				maxID = v
			}
		}
	}

	root := xmlquery.QuerySelector(doc, relationshipsExpr)
	if root == nil {
		return nil, "", false, &DocumentError{Code: CodeParseError, Operation: "parse", Path: documentRelsPart, Message: "missing Relationships element"}
	}
	id := fmt.Sprintf("rId%d", maxID+1)
	rel := &xmlquery.Node{Type: xmlquery.ElementNode, Data: "Relationship"}
	xmlquery.AddAttr(rel, "Id", id)
	xmlquery.AddAttr(rel, "Type", relType)
	xmlquery.AddAttr(rel, "Target", target)
	xmlquery.AddChild(root, rel)

	return []byte(doc.OutputXML(true)), id, true, nil
}

// relationshipTarget returns the package part a relationship of relType in
// the document's manifest points to.
func relationshipTarget(data []byte, relType string) (string, bool, error) {
	if len(data) == 0 {
		return "", false, nil
	}
	doc, err := parseManifest(data, documentRelsPart)
	if err != nil {
		return "", false, err
	}
	for _, n := range xmlquery.QuerySelectorAll(doc, relationshipExpr) {
		if n.SelectAttr("Type") != relType || n.SelectAttr("TargetMode") == "External" {
			continue
		}
		return resolveTarget(path.Dir(documentPart), n.SelectAttr("Target")), true, nil
	}
	return "", false, nil
}

// resolveTarget turns a relationship target into a part name.
func resolveTarget(base, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return path.Clean(path.Join(base, target))
}

// relativeTarget is the inverse of resolveTarget for parts below base.
func relativeTarget(base, part string) string {
	if rel, ok := strings.CutPrefix(part, base+"/"); ok {
		return rel
	}
	return "/" + part
}
