package openapi

import (
	"fmt"
	"strings"
	"unicode"
)

const componentPrefix = "#/components/schemas/"

func buildDocument(s settings, namespaces []string, schemas map[string]any) map[string]any {
	info := map[string]any{
		"title":   s.info.Title,
		"version": s.info.Version,
	}
	if s.info.Description != "" {
		info["description"] = s.info.Description
	}

	// GET <base> returns the whole tree, GET <base>/<ns> one namespace.
	properties := make(map[string]any, len(namespaces))
	paths := make(map[string]any, len(namespaces)+1)
	for _, namespace := range namespaces {
		ref := map[string]any{"$ref": componentPrefix + componentName(namespace)}
		properties[namespace] = ref
		paths[s.basePath+"/"+namespace] = getOperation(s.contentType,
			"get"+componentName(namespace),
			fmt.Sprintf("Resolved %s namespace", namespace),
			ref,
		)
	}
	paths[s.basePath] = getOperation(s.contentType, "getConfig", "Resolved configuration", map[string]any{
		"type":       "object",
		"properties": properties,
	})

	document := map[string]any{
		"openapi": s.version,
		"info":    info,
		"paths":   paths,
	}
	if len(s.servers) > 0 {
		servers := make([]any, len(s.servers))
		for i, url := range s.servers {
			servers[i] = map[string]any{"url": url}
		}
		document["servers"] = servers
	}
	if len(schemas) > 0 {
		document["components"] = map[string]any{"schemas": schemas}
	}
	return document
}

func getOperation(contentType, operationID, summary string, schema map[string]any) map[string]any {
	return map[string]any{
		"get": map[string]any{
			"operationId": operationID,
			"summary":     summary,
			"responses": map[string]any{
				"200": map[string]any{
					"description": "OK",
					"content": map[string]any{
						contentType: map[string]any{"schema": schema},
					},
				},
			},
		},
	}
}

// componentName turns a namespace such as "http-server" into HttpServer.
func componentName(namespace string) string {
	var out strings.Builder
	upper := true
	for _, r := range namespace {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		out.WriteRune(r)
	}
	if out.Len() == 0 {
		return "Namespace"
	}
	return out.String()
}

func validateDocument(document map[string]any) error {
	if document == nil {
		return fmt.Errorf("openapi: document cannot be nil")
	}
	openapi, _ := document["openapi"].(string)
	if openapi == "" {
		return fmt.Errorf("openapi: document missing version string")
	}
	info, _ := document["info"].(map[string]any)
	if info == nil {
		return fmt.Errorf("openapi: document missing info section")
	}
	if title, _ := info["title"].(string); title == "" {
		return fmt.Errorf("openapi: info.title must be set")
	}
	if version, _ := info["version"].(string); version == "" {
		return fmt.Errorf("openapi: info.version must be set")
	}
	paths, _ := document["paths"].(map[string]any)
	if len(paths) == 0 {
		return fmt.Errorf("openapi: document must define at least one path")
	}
	seen := map[string]string{}
	for pathKey, pathValue := range paths {
		pathItem, _ := pathValue.(map[string]any)
		if len(pathItem) == 0 {
			return fmt.Errorf("openapi: path %q missing operations", pathKey)
		}
		for method, operationValue := range pathItem {
			operation, _ := operationValue.(map[string]any)
			if operation == nil {
				return fmt.Errorf("openapi: operation %s %s invalid payload", method, pathKey)
			}
			id, _ := operation["operationId"].(string)
			if id == "" {
				return fmt.Errorf("openapi: operation %s %s missing operationId", method, pathKey)
			}
			if other, dup := seen[id]; dup {
				return fmt.Errorf("openapi: operationId %q used by %s and %s", id, other, pathKey)
			}
			seen[id] = pathKey
			if _, ok := operation["responses"].(map[string]any); !ok {
				return fmt.Errorf("openapi: operation %s %s missing responses", method, pathKey)
			}
		}
	}
	return nil
}
