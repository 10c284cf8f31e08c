package store

// Id generation follows the layout operators already have in their files:
// companies count up from 1, the first department of company index ci gets
// (ci+1)*100+1 and the first person of department di gets
// (ci+1)*1000+(di+1)*10+1. Later siblings take max+1.
//
// The seeds depend on positions, so after a delete or reorder a seed can hit
// an id that already lives under another parent. With WithUniqueIDs generated
// ids are bumped past any id of the same kind in the whole document.

func (s *Store) nextCompanyID() int {
	next := 1
	for _, c := range s.companies.Companies {
		if c.ID >= next {
			next = c.ID + 1
		}
	}
	return next
}

func (s *Store) nextDepartmentID(ci int) int {
	siblings := s.companies.Companies[ci].Departments
	candidate := (ci+1)*100 + 1
	if len(siblings) > 0 {
		candidate = siblings[0].ID
		for _, d := range siblings {
			candidate = max(candidate, d.ID)
		}
		candidate++
	}
	if !s.uniqueIDs {
		return candidate
	}

	taken := make(map[int]struct{})
	for _, c := range s.companies.Companies {
		for _, d := range c.Departments {
			taken[d.ID] = struct{}{}
		}
	}
	return firstFree(candidate, taken)
}

func (s *Store) nextPersonID(ci, di int) int {
	siblings := s.companies.Companies[ci].Departments[di].Persons
	candidate := (ci+1)*1000 + (di+1)*10 + 1
	if len(siblings) > 0 {
		candidate = siblings[0].ID
		for _, p := range siblings {
			candidate = max(candidate, p.ID)
		}
		candidate++
	}
	if !s.uniqueIDs {
		return candidate
	}

	taken := make(map[int]struct{})
	for _, c := range s.companies.Companies {
		for _, d := range c.Departments {
			for _, p := range d.Persons {
				taken[p.ID] = struct{}{}
			}
		}
	}
	return firstFree(candidate, taken)
}

func firstFree(candidate int, taken map[int]struct{}) int {
	for {
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
		candidate++
	}
}
