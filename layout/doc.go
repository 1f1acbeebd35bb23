// Package layout locates the three exam parts in a paragraph stream.
//
// Each part has an ordered set of heading patterns. Patterns are matched
// against the accent-folded paragraph, anchored at its start, so "PHẦN II",
// "Phan 2" and "PART II" all open part 2. A section title without a part
// number or roman numeral ("Đúng sai", "Short answer") must fill the whole
// line; "Trả lời ngắn gọn: ..." is question text, not a heading.
//
//	bounds := layout.DetectSections(paragraphs)
//	mc := paragraphs[bounds.Part1.Start:bounds.Part1.End]
//
// Part 2 is searched only after part 1's start and part 3 only after the
// later of the two. An undetected part 1 starts at the beginning of the
// document; an undetected part 2 or 3 starts at the end, which leaves it
// empty and lets the preceding part run on.
package layout
