package triage

// ComputeESILevel maps vitals to a 1..5 acuity level through a fixed
// threshold ladder, most acute first. The first rung that matches wins, so a
// patient with several deviations lands on the worst one. Deterministic: the
// same vitals always yield the same level.
func ComputeESILevel(v Vitals) int {
	// Level 1: resuscitation. Airway, breathing or circulation failing.
	if v.GlasgowComaScore <= 8 ||
		v.OxygenSaturation < 85 ||
		v.SystolicBP < 70 ||
		v.RespiratoryRate < 8 {
		return 1
	}
	// Level 2: emergent. High-risk vitals or severe pain.
	if v.GlasgowComaScore <= 12 ||
		v.OxygenSaturation < 92 ||
		v.HeartRate > 130 || v.HeartRate < 40 ||
		v.RespiratoryRate > 30 ||
		v.SystolicBP < 90 ||
		v.PainScale >= 8 {
		return 2
	}
	// Level 3: urgent.
	if v.HeartRate > 100 ||
		v.RespiratoryRate > 24 ||
		v.Temperature >= 38.5 {
		return 3
	}
	// Level 4: less urgent, any single mild deviation.
	if v.HeartRate > 90 ||
		v.Temperature >= 38.0 ||
		v.PainScale >= 4 {
		return 4
	}
	return 5
}
