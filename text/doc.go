// Package text provides the string transforms applied to reconstructed
// document text.
//
// Every transform is idempotent: applying it to its own output returns the
// same string.
//
// # Normalization
//
// [Normalize] applies Unicode NFC and trims. [NormalizeMath] rewrites LaTeX
// delimiters into the dollar convention:
//
//	\[ x \]            -> $$ x $$
//	\( x \)            -> $ x $
//	\begin{align*}     -> \begin{aligned}
//	$$$                -> $$
//
// [CollapseWhitespace] folds runs of spaces and tabs while keeping explicit
// line breaks, and limits blank lines to one.
//
// # Escaping
//
// [EscapeHTML] escapes &, < and > outside of math spans. Spans delimited by
// $$...$$ or $...$ are copied verbatim:
//
//	text.EscapeHTML("<b>x</b> and $a<b$")
//	// &lt;b&gt;x&lt;/b&gt; and $a<b$
//
// # Folding
//
// [Fold] strips diacritics so that headings can be matched with or without
// Vietnamese accents.
package text
