// Licensed to NASA JPL under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. NASA JPL licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

// Reader for the MapsProject.xml descriptor written by the Maps acquisition software. Elements are
// resolved by their local name, so we don't care which schema namespace a given Maps version writes,
// only that the document declares one.
package mapsproject

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// DescriptorError - the project descriptor could not be read or doesn't have the structure we need. Fatal for a run
type DescriptorError struct {
	Path   string
	Reason string
}

func (e DescriptorError) Error() string {
	if len(e.Path) > 0 {
		return fmt.Sprintf("project descriptor \"%v\": %v", e.Path, e.Reason)
	}
	return "project descriptor: " + e.Reason
}

// LayerRecord - one imaged layer as listed in the project
type LayerRecord struct {
	// Name shown for the layer (last segment of the storage path)
	Name string
	// Storage path relative to the project root, always '/' separated here
	StoragePath string
	// Group-qualified name used to name result files
	OutputID string
	// Display name of the layer group this came from
	Group string
}

// RelativeDir - storage path using the OS path separator
func (r LayerRecord) RelativeDir() string {
	return strings.ReplaceAll(r.StoragePath, "/", string(os.PathSeparator))
}

type LayerGroup struct {
	Name   string
	Layers []LayerRecord
}

type ProjectDescriptor struct {
	Name        string
	Description string
	Groups      []LayerGroup
}

// Layers - all layers of all groups, in document order
func (p ProjectDescriptor) Layers() []LayerRecord {
	result := []LayerRecord{}
	for _, g := range p.Groups {
		result = append(result, g.Layers...)
	}
	return result
}

////////////////////////////////////////////////////////////////////////////////////////////////////////////
// XML schema, by local element name

type projectXML struct {
	XMLName     xml.Name
	DisplayName *string         `xml:"displayName"`
	Description *string         `xml:"description"`
	LayerGroups *layerGroupsXML `xml:"LayerGroups"`
}

type layerGroupsXML struct {
	Groups []layerGroupXML `xml:"LayerGroup"`
}

type layerGroupXML struct {
	DisplayName string     `xml:"displayName"`
	Layers      *layersXML `xml:"Layers"`
}

// Maps writes a different element name per layer type (image layer, tile set layer...), all with a displayName
type layersXML struct {
	Items []layerItemXML `xml:",any"`
}

type layerItemXML struct {
	XMLName     xml.Name
	DisplayName *string `xml:"displayName"`
}

// ReadProjectFile - reads and parses a project descriptor from disk
func ReadProjectFile(path string) (ProjectDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ProjectDescriptor{}, DescriptorError{Path: path, Reason: errors.Wrap(err, "failed to read").Error()}
	}

	result, err := ParseProject(data)
	if err != nil {
		if descErr, ok := err.(DescriptorError); ok {
			descErr.Path = path
			return result, descErr
		}
		return result, err
	}
	return result, nil
}

// ParseProject - parses the descriptor document, preserving document order of groups and layers
func ParseProject(data []byte) (ProjectDescriptor, error) {
	result := ProjectDescriptor{Groups: []LayerGroup{}}

	doc := projectXML{}
	if err := xml.Unmarshal(data, &doc); err != nil {
		return result, DescriptorError{Reason: errors.Wrap(err, "failed to parse XML").Error()}
	}

	if len(doc.XMLName.Space) <= 0 {
		return result, DescriptorError{Reason: fmt.Sprintf("no namespace found on root element <%v>", doc.XMLName.Local)}
	}

	if doc.DisplayName == nil || len(strings.TrimSpace(*doc.DisplayName)) <= 0 {
		return result, DescriptorError{Reason: "no project found (missing displayName)"}
	}
	result.Name = strings.TrimSpace(*doc.DisplayName)

	if doc.Description != nil {
		result.Description = strings.TrimSpace(*doc.Description)
	}

	if doc.LayerGroups == nil {
		return result, DescriptorError{Reason: "missing LayerGroups element"}
	}

	for _, groupXML := range doc.LayerGroups.Groups {
		group := LayerGroup{Name: strings.TrimSpace(groupXML.DisplayName), Layers: []LayerRecord{}}
		if groupXML.Layers == nil {
			result.Groups = append(result.Groups, group)
			continue
		}

		seen := map[string]bool{}
		for _, item := range groupXML.Layers.Items {
			if item.DisplayName == nil {
				continue
			}

			rec, err := makeLayerRecord(*item.DisplayName, group.Name)
			if err != nil {
				return result, err
			}

			if seen[rec.OutputID] {
				return result, DescriptorError{Reason: fmt.Sprintf("layer \"%v\" appears more than once in group \"%v\"", rec.OutputID, group.Name)}
			}
			seen[rec.OutputID] = true

			group.Layers = append(group.Layers, rec)
		}

		result.Groups = append(result.Groups, group)
	}

	return result, nil
}

// Layer display names are really storage paths, eg LayersData\Layer\Overview 1. Maps writes them with
// backslashes, but we accept either separator
func makeLayerRecord(storagePath string, group string) (LayerRecord, error) {
	parts := []string{}
	for _, part := range strings.FieldsFunc(storagePath, func(r rune) bool { return r == '\\' || r == '/' }) {
		part = strings.TrimSpace(part)
		if len(part) > 0 {
			parts = append(parts, part)
		}
	}

	if len(parts) <= 0 {
		return LayerRecord{}, DescriptorError{Reason: fmt.Sprintf("layer in group \"%v\" has an empty storage path", group)}
	}

	name := parts[len(parts)-1]
	outputID := name
	if len(parts) > 1 {
		outputID = parts[len(parts)-2] + "-" + name
	}

	return LayerRecord{
		Name:        name,
		StoragePath: strings.Join(parts, "/"),
		OutputID:    outputID,
		Group:       group,
	}, nil
}
