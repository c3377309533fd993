package registration

// Quote computes the total fee for a submission. It is deterministic and
// never fails: an unrecognized attendance option prices at zero rather than
// erroring, and the companion list is priced as given. The cap on companion
// count is the service's job, not the pricing table's.
func Quote(attendanceType string, hasPlusOnes bool, companions []CompanionInfo) int {
	var fee int

	switch attendanceType {
	case Option1:
		fee = 1000
	case Option2:
		fee = 1800
	case Option3:
		fee = 2000
	}

	if !hasPlusOnes {
		return fee
	}

	for _, c := range companions {
		fee += companionSurcharge(attendanceType, c.BedType)
	}

	return fee
}

// companionSurcharge prices one plus-one. Option1 has no companion program,
// so it carries no surcharge. Any bed type other than "share" is billed as a
// single bed.
func companionSurcharge(attendanceType, bedType string) int {
	switch attendanceType {
	case Option2:
		if bedType == BedShare {
			return 1600
		}
		return 1800
	case Option3:
		if bedType == BedShare {
			return 1800
		}
		return 2000
	default:
		return 0
	}
}
