// Package tree implements the ordered, id-addressed tree shared by the form
// schema and the layout block model. A node exposes zero or more branches
// (ordered child collections); single-children containers and multi-branch
// containers such as tabs are handled by the same walk, lookup, splice and id
// regeneration helpers so each document flavor only supplies its node type.
package tree
