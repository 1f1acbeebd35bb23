// Package model defines the exam data model produced by the importer.
//
// A parse produces exactly one [ExamDocument]. Its flat Questions list and
// the per-section lists share the same *[Question] values, so a change made
// through one view is visible through the other. Everything else is built
// once and treated as read-only afterwards.
//
// # Questions
//
// Question numbers are disambiguated across the document as
// part*100 + source number, so question 3 of part 2 is numbered 203:
//
//	q.Number == q.Part*100 + q.SourceNumber
//
// # Images
//
// Images are carried as [ImageAsset] values on the document. Question text
// refers to them through inline markers of the form [IMAGE:img_N], or
// [IMAGE_RID:rIdN] when the relationship could not be mapped to an asset.
package model
