// Package segment turns the paragraphs of one exam part into raw questions.
//
// Each part has its own line grammar, an ordered list of matchers that tag
// a paragraph as a question header, solution heading, figure caption, part
// heading, option, answer phrase or plain text. A single transition
// function consumes the tagged lines:
//
//	Idle -> Stem -> (Options) -> Solution -> next header ...
//
// Part grammars:
//
//	part 1  options "A." .. "D."  answer from "Chọn X" / "Choose X", else the
//	        first underlined bare letter
//	part 2  statements "a)" .. "d)"  answer is the sorted list of underlined
//	        statement letters, e.g. "a,c"
//	part 3  no options  answer from "Đáp án: v" / "Answer: v"
//
// An explicit answer phrase always wins over underline evidence.
package segment
