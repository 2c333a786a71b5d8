package questions

import "time"

func sampleQualitative() []Qualitative {
	now := time.Now().UTC()
	return []Qualitative{
		{ID: "1", Question: "How would you describe the employee's leadership capabilities?", CreatedAt: now, UpdatedAt: now},
		{ID: "2", Question: "Rate the employee's communication skills on a scale of 1-10", CreatedAt: now, UpdatedAt: now},
		{ID: "3", Question: "What are the employee's key strengths in teamwork?", CreatedAt: now, UpdatedAt: now},
	}
}

func sampleQuantitative() []Quantitative {
	now := time.Now().UTC()
	return []Quantitative{
		{ID: "1", Question: "Rate the employee's technical skills proficiency", Scale: ScaleOneToFive, CreatedAt: now, UpdatedAt: now},
		{ID: "2", Question: "How would you rate the employee's project completion rate?", Scale: ScaleOneToFive, CreatedAt: now, UpdatedAt: now},
		{ID: "3", Question: "Rate the employee's meeting attendance and punctuality", Scale: ScaleOneToFive, CreatedAt: now, UpdatedAt: now},
	}
}
