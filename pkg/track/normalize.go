package track

//Normalize makes s safe for generic encoders: sentinel entries are removed
//from every class and frame before any field is read, and player team colors
//are flattened from numeric arrays into plain component lists. Everything
//else passes through untouched. s is modified in place and returned;
//normalizing an already normalized store changes nothing.
func Normalize(s *Store) *Store {
	s.Each(func(class string, frames []Frame) {
		for _, frame := range frames {
			delete(frame, SentinelID)
			if class != Players {
				continue
			}
			for _, rec := range frame {
				if rec == nil || rec.TeamColor == nil || rec.TeamColor.Plain() {
					continue
				}
				rec.TeamColor = &Color{Components: rec.TeamColor.Values()}
			}
		}
	})
	return s
}
