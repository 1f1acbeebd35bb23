package main

import (
	"strconv"

	"github.com/tsawler/examdoc/model"
)

// JSON shapes of the parse command output.

type examJSON struct {
	Title     string            `json:"title"`
	TimeLimit int               `json:"timeLimit"`
	Sections  []sectionJSON     `json:"sections"`
	Answers   map[string]string `json:"answers"`
	Images    []imageJSON       `json:"images"`
}

type sectionJSON struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Type        string         `json:"type"`
	Questions   []questionJSON `json:"questions"`
}

type questionJSON struct {
	Number        int          `json:"number"`
	Part          int          `json:"part"`
	Text          string       `json:"text"`
	Type          string       `json:"type"`
	Options       []optionJSON `json:"options,omitempty"`
	CorrectAnswer string       `json:"correctAnswer,omitempty"`
	Solution      string       `json:"solution,omitempty"`
	Images        []string     `json:"images,omitempty"`
}

type optionJSON struct {
	Letter string `json:"letter"`
	Text   string `json:"text"`
}

type imageJSON struct {
	ID             string `json:"id"`
	Filename       string `json:"filename"`
	ContentType    string `json:"contentType"`
	RelationshipID string `json:"rId,omitempty"`
	Width          int    `json:"width,omitempty"`
	Height         int    `json:"height,omitempty"`
	Data           string `json:"data,omitempty"`
}

func toJSON(doc *model.ExamDocument, withData bool) examJSON {
	out := examJSON{
		Title:     doc.Title,
		TimeLimit: doc.TimeLimit,
		Sections:  []sectionJSON{},
		Answers:   make(map[string]string, len(doc.Answers)),
		Images:    []imageJSON{},
	}

	for _, s := range doc.Sections {
		sj := sectionJSON{Name: s.Name, Description: s.Description, Type: string(s.Type)}
		for _, q := range s.Questions {
			qj := questionJSON{
				Number:        q.Number,
				Part:          q.Part,
				Text:          q.Text,
				Type:          string(q.Type),
				CorrectAnswer: q.CorrectAnswer,
				Solution:      q.Solution,
				Images:        q.Images,
			}
			for _, o := range q.Options {
				qj.Options = append(qj.Options, optionJSON{Letter: o.Letter, Text: o.Text})
			}
			sj.Questions = append(sj.Questions, qj)
		}
		out.Sections = append(out.Sections, sj)
	}

	for n, a := range doc.Answers {
		out.Answers[strconv.Itoa(n)] = a
	}

	for _, img := range doc.Images {
		ij := imageJSON{
			ID:             img.ID,
			Filename:       img.Filename,
			ContentType:    img.MIMEType,
			RelationshipID: img.RelationshipID,
			Width:          img.Width,
			Height:         img.Height,
		}
		if withData {
			ij.Data = img.DataURL()
		}
		out.Images = append(out.Images, ij)
	}
	return out
}
