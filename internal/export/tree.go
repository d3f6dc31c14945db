package export

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"debugsweep/internal/scanner"
)

// treeNode is one directory or file in the rendered tree.
type treeNode struct {
	name       string
	isFile     bool
	statements []scanner.Statement
	children   map[string]*treeNode
}

func writeTree(w io.Writer, res *scanner.Result) error {
	files := map[string]bool{}
	for _, st := range res.Statements {
		files[st.RelPath] = true
	}

	noun := "statements"
	if res.TotalStatements == 1 {
		noun = "statement"
	}
	fmt.Fprintf(w, "%d debug %s in %d of %d scanned files\n",
		res.TotalStatements, noun, len(files), res.ScannedFiles)

	if res.TotalStatements == 0 {
		return nil
	}

	fmt.Fprintln(w, ".")
	printTreeNode(w, buildTree(res.Statements), "")
	return nil
}

// buildTree nests the flat statement list by the path segments of RelPath.
func buildTree(statements []scanner.Statement) *treeNode {
	root := &treeNode{children: make(map[string]*treeNode)}

	for _, st := range statements {
		parts := strings.Split(st.RelPath, "/")
		current := root
		for i, part := range parts {
			if i == len(parts)-1 {
				file := current.children[part]
				if file == nil {
					file = &treeNode{name: part, isFile: true}
					current.children[part] = file
				}
				file.statements = append(file.statements, st)
				continue
			}
			if current.children[part] == nil {
				current.children[part] = &treeNode{
					name:     part,
					children: make(map[string]*treeNode),
				}
			}
			current = current.children[part]
		}
	}
	return root
}

// printTreeNode renders directories before files, each level sorted by name.
// Single-child directory chains collapse into one a/b/c segment.
func printTreeNode(w io.Writer, node *treeNode, prefix string) {
	var dirs, fileNodes []*treeNode
	for _, child := range node.children {
		if child.isFile {
			fileNodes = append(fileNodes, child)
		} else {
			dirs = append(dirs, child)
		}
	}

	sort.Slice(dirs, func(i, j int) bool { return dirs[i].name < dirs[j].name })
	sort.Slice(fileNodes, func(i, j int) bool { return fileNodes[i].name < fileNodes[j].name })

	total := len(dirs) + len(fileNodes)
	printed := 0

	for _, dir := range dirs {
		printed++
		last := printed == total

		merged := dir.name
		current := dir
		for len(current.children) == 1 {
			var only *treeNode
			for _, c := range current.children {
				only = c
			}
			if only.isFile {
				break
			}
			merged = merged + "/" + only.name
			current = only
		}

		connector, childPrefix := connectors(prefix, last)
		fmt.Fprintf(w, "%s%s%s/\n", prefix, connector, merged)
		printTreeNode(w, current, childPrefix)
	}

	for _, file := range fileNodes {
		printed++
		last := printed == total

		connector, childPrefix := connectors(prefix, last)
		fmt.Fprintf(w, "%s%s%s\n", prefix, connector, file.name)

		for _, st := range file.statements {
			fmt.Fprintf(w, "%s  %d:%d  [%s] %s\n",
				childPrefix, st.Line, st.Column+1, st.Severity, st.Content)
		}
	}
}

func connectors(prefix string, last bool) (connector, childPrefix string) {
	if last {
		return "└── ", prefix + "    "
	}
	return "├── ", prefix + "│   "
}
