package cli

import "cemap-quiz-service/internal/domain"

// sampleQuestionBank provides a minimal CeMAP-flavoured bank for running
// without Postgres; production deployments load the real bank from the
// database.
func sampleQuestionBank() []domain.Question {
	return []domain.Question{
		{
			ID:            "q-reg-1",
			Topic:         "Regulation",
			Text:          "Which body regulates mortgage advice in the UK?",
			Options:       []string{"The FCA", "The Bank of England", "HM Treasury", "The PRA"},
			CorrectOption: domain.OptionA,
		},
		{
			ID:            "q-reg-2",
			Topic:         "Regulation",
			Text:          "MCOB rules apply to which of the following?",
			Options:       []string{"Unsecured personal loans", "Regulated mortgage contracts", "Commercial insurance", "Credit cards"},
			CorrectOption: domain.OptionB,
		},
		{
			ID:            "q-law-1",
			Topic:         "Law",
			Text:          "A freehold estate grants ownership for what duration?",
			Options:       []string{"99 years", "125 years", "An unlimited period", "21 years"},
			CorrectOption: domain.OptionC,
		},
		{
			ID:            "q-law-2",
			Topic:         "Law",
			Text:          "Which document transfers legal title on completion of a property purchase?",
			Options:       []string{"The mortgage deed", "The transfer deed", "The local search", "The valuation report"},
			CorrectOption: domain.OptionB,
		},
		{
			ID:            "q-prod-1",
			Topic:         "Mortgage Products",
			Text:          "With a repayment mortgage, what does each monthly payment consist of?",
			Options:       []string{"Interest only", "Capital only", "Capital and interest", "Fees only"},
			CorrectOption: domain.OptionC,
		},
		{
			ID:            "q-prod-2",
			Topic:         "Mortgage Products",
			Text:          "An offset mortgage links the loan to which of the following?",
			Options:       []string{"A savings account", "A pension fund", "An ISA only", "A share portfolio"},
			CorrectOption: domain.OptionA,
		},
		{
			ID:              "q-scn-1a",
			Topic:           "Affordability",
			Text:            "What is the couple's combined gross annual income?",
			Options:         []string{"£58,000", "£62,000", "£66,000", "£70,000"},
			CorrectOption:   domain.OptionB,
			ScenarioText:    "David and Priya earn £38,000 and £24,000 respectively. They have a £4,000 car loan and want a 90% LTV mortgage on a £220,000 flat.",
			ScenarioGroupID: "scn-affordability-1",
		},
		{
			ID:              "q-scn-1b",
			Topic:           "Affordability",
			Text:            "What deposit do they need for the flat at 90% LTV?",
			Options:         []string{"£11,000", "£22,000", "£33,000", "£44,000"},
			CorrectOption:   domain.OptionB,
			ScenarioText:    "David and Priya earn £38,000 and £24,000 respectively. They have a £4,000 car loan and want a 90% LTV mortgage on a £220,000 flat.",
			ScenarioGroupID: "scn-affordability-1",
		},
		{
			ID:              "q-scn-2a",
			Topic:           "Protection",
			Text:            "Which policy would repay Moira's mortgage in full on death?",
			Options:         []string{"Decreasing term assurance", "Whole of life", "Income protection", "Critical illness only"},
			CorrectOption:   domain.OptionA,
			ScenarioText:    "Moira, 41, has a £150,000 repayment mortgage over 20 years and no existing protection cover.",
			ScenarioGroupID: "scn-protection-1",
		},
		{
			ID:              "q-scn-2b",
			Topic:           "Protection",
			Text:            "Why does decreasing term assurance suit a repayment mortgage?",
			Options:         []string{"Premiums rise yearly", "Cover tracks the falling loan balance", "It pays out at retirement", "It includes unemployment cover"},
			CorrectOption:   domain.OptionB,
			ScenarioText:    "Moira, 41, has a £150,000 repayment mortgage over 20 years and no existing protection cover.",
			ScenarioGroupID: "scn-protection-1",
		},
	}
}
