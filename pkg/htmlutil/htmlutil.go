// Copyright (C) 2021  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

// Package htmlutil has small helpers for walking golang.org/x/net/html trees.
package htmlutil

import (
	"strings"

	"golang.org/x/net/html"
)

func VisitHTML(node *html.Node, before, after func(*html.Node) error) error {
	if before != nil {
		if err := before(node); err != nil {
			return err
		}
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if err := VisitHTML(child, before, after); err != nil {
			return err
		}
	}
	if after != nil {
		if err := after(node); err != nil {
			return err
		}
	}
	return nil
}

func GetAttr(node *html.Node, namespace, name string) (val string, ok bool) {
	if node == nil {
		return "", false
	}
	for _, attr := range node.Attr {
		if attr.Namespace == namespace && attr.Key == name {
			return attr.Val, true
		}
	}
	return "", false
}

// Classes returns the whitespace-separated words of the node's "class" attribute.
func Classes(node *html.Node) []string {
	val, _ := GetAttr(node, "", "class")
	return strings.Fields(val)
}

// HasClass returns whether the node's "class" attribute contains class.
func HasClass(node *html.Node, class string) bool {
	for _, c := range Classes(node) {
		if c == class {
			return true
		}
	}
	return false
}

// TextContent returns the concatenation of all text nodes under node.
func TextContent(node *html.Node) string {
	var ret strings.Builder
	_ = VisitHTML(node, func(n *html.Node) error {
		if n.Type == html.TextNode {
			ret.WriteString(n.Data)
		}
		return nil
	}, nil)
	return ret.String()
}
