package reco

// goodHit returns a fully calibrated reading on strip ch of board.
func goodHit(board, ch int, charge float64) Hit {
	h := NewHit(board, ch/ChannelsPerChip, ch%ChannelsPerChip, 1)
	h.SetPDO(100)
	h.SetTDO(50)
	h.SetCharge(charge)
	h.SetTime(20)
	return h
}

// stripCharges builds a board from strip -> charge pairs.
func stripCharges(board int, strips ...float64) *BoardHits {
	var b BoardHits
	for i := 0; i+1 < len(strips); i += 2 {
		b.AddHit(goodHit(board, int(strips[i]), strips[i+1]))
	}
	return &b
}

func clusterStrips(c *Cluster) []int {
	strips := make([]int, c.Len())
	for i := range strips {
		strips[i] = c.Get(i).Channel()
	}
	return strips
}
