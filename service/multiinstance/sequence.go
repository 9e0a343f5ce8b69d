package multiinstance

// Insert appends assignees after every existing position, one position per
// assignee
func Insert(list []string, add []string) []string {
	result := make([]string, 0, len(list)+len(add))
	result = append(result, list...)
	for _, item := range add {
		if item == "" {
			continue
		}
		result = append(result, item)
	}
	return result
}

// Remove keeps list[:loopCounter+1] verbatim, so neither completed signers
// nor the active one are touched, and drops one pending occurrence per
// requested assignee, searching from the tail. It returns the new list and
// the assignees actually removed, in request order.
func Remove(list []string, loopCounter int, remove []string) ([]string, []string) {
	if loopCounter < 0 {
		loopCounter = 0
	}
	keep := loopCounter + 1
	if keep > len(list) {
		keep = len(list)
	}
	dropped := make([]bool, len(list))
	var removed []string
	for _, item := range remove {
		for i := len(list) - 1; i >= keep; i-- {
			if !dropped[i] && list[i] == item {
				dropped[i] = true
				removed = append(removed, item)
				break
			}
		}
	}
	result := make([]string, 0, len(list)-len(removed))
	for i, item := range list {
		if !dropped[i] {
			result = append(result, item)
		}
	}
	return result, removed
}
