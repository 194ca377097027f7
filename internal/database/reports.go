// Huddle - Agency Back-Office and Sales Pipeline API
// Copyright 2026 Agency Ops
// SPDX-License-Identifier: MIT

package database

// Report aggregation over department review responses. The response rows
// carry two JSON documents: the manager's scored form (metrics and
// pillars) and the employee's free-text form (sections of question and
// answer pairs). Aggregation runs in-process over the fetched rows.

// MetricSummary accumulates one scored metric or pillar across responses.
type MetricSummary struct {
	Name  string  `json:"name"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// ReportAnswer is one employee's answer to a question.
type ReportAnswer struct {
	Username string `json:"username"`
	Answer   string `json:"answer"`
}

// QuestionSummary collects every non-empty answer given to one question.
type QuestionSummary struct {
	Text    string         `json:"text"`
	Answers []ReportAnswer `json:"answers"`
}

// SectionSummary groups question summaries under their form section.
type SectionSummary struct {
	SectionName string                      `json:"sectionName"`
	Questions   map[string]*QuestionSummary `json:"questions"`
}

// ReportData is the aggregated department report.
type ReportData struct {
	Metrics  map[string]*MetricSummary  `json:"metrics"`
	Pillars  map[string]*MetricSummary  `json:"pillars"`
	Sections map[string]*SectionSummary `json:"sections"`
}

// AggregateReport folds department report rows into metric and pillar
// totals plus per-question answer lists. Rows are the
// DepartmentReportRows shape; malformed or missing documents contribute
// nothing.
func AggregateReport(rows []map[string]any) ReportData {
	data := ReportData{
		Metrics:  map[string]*MetricSummary{},
		Pillars:  map[string]*MetricSummary{},
		Sections: map[string]*SectionSummary{},
	}

	for _, row := range rows {
		managerForm, _ := row["manager_form_data"].(map[string]any)
		employeeForm, _ := row["employee_form_data"].(map[string]any)
		employee, _ := row["employee"].(string)

		accumulateScores(data.Metrics, managerForm, "metrics", "value")
		accumulateScores(data.Pillars, managerForm, "pillars", "score")

		for sectionName, sectionValue := range employeeForm {
			questions, ok := sectionValue.(map[string]any)
			if !ok {
				continue
			}

			for question, rawAnswer := range questions {
				answer, ok := rawAnswer.(string)
				if !ok || answer == "" {
					continue
				}

				section := data.Sections[sectionName]
				if section == nil {
					section = &SectionSummary{
						SectionName: sectionName,
						Questions:   map[string]*QuestionSummary{},
					}
					data.Sections[sectionName] = section
				}

				summary := section.Questions[question]
				if summary == nil {
					summary = &QuestionSummary{Text: question}
					section.Questions[question] = summary
				}
				summary.Answers = append(summary.Answers, ReportAnswer{Username: employee, Answer: answer})
			}
		}
	}

	return data
}

// accumulateScores sums one scored group (form[group][key][scoreKey]) into
// the given summary map.
func accumulateScores(into map[string]*MetricSummary, form map[string]any, group, scoreKey string) {
	entries, ok := form[group].(map[string]any)
	if !ok {
		return
	}

	for key, raw := range entries {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		score, ok := entry[scoreKey].(float64)
		if !ok {
			continue
		}

		if existing := into[key]; existing != nil {
			existing.Total += score
			existing.Count++
		} else {
			into[key] = &MetricSummary{Name: key, Total: score, Count: 1}
		}
	}
}
