package track

//AddPositions sets Position on every record: the bbox center for the ball
//and the foot point for people.
func AddPositions(s *Store) {
	s.Each(func(class string, frames []Frame) {
		for _, frame := range frames {
			for _, rec := range frame {
				if rec == nil {
					continue
				}
				p := rec.BBox.Foot()
				if class == Ball {
					p = rec.BBox.Center()
				}
				rec.Position = &p
			}
		}
	})
	s.Bump()
}

//InterpolateBall fills frames where the ball was not detected. Gaps between
//two detections are filled linearly, gaps after the last detection repeat
//it, and frames before the first detection take the first one. When the ball
//is never seen the frames are returned unchanged.
func InterpolateBall(frames []Frame) []Frame {
	known := make([]int, 0, len(frames))
	for i, f := range frames {
		if rec, ok := f[BallID]; ok && rec != nil {
			known = append(known, i)
		}
	}
	if len(known) == 0 {
		return frames
	}

	fill := func(i int, b BBox) {
		if frames[i] == nil {
			frames[i] = Frame{}
		}
		center := b.Center()
		frames[i][BallID] = &Record{BBox: b, Position: &center}
	}

	first, last := known[0], known[len(known)-1]
	for i := 0; i < first; i++ {
		fill(i, frames[first][BallID].BBox)
	}
	for i := last + 1; i < len(frames); i++ {
		fill(i, frames[last][BallID].BBox)
	}
	for k := 1; k < len(known); k++ {
		lo, hi := known[k-1], known[k]
		if hi-lo < 2 {
			continue
		}
		a, b := frames[lo][BallID].BBox, frames[hi][BallID].BBox
		for i := lo + 1; i < hi; i++ {
			var box BBox
			for c := range box {
				box[c] = a[c] + (b[c]-a[c])*float64(i-lo)/float64(hi-lo)
			}
			fill(i, box)
		}
	}
	return frames
}
