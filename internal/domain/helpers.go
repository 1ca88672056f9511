package domain

// NextSeat returns the seat after seat, wrapping around the table.
func NextSeat(seat int) int {
	return (seat + 1) % len(Colors)
}

// CountPlayersWithHands returns the number of participants still holding instructions.
func CountPlayersWithHands(g *Game) int {
	count := 0
	for _, p := range g.Machine.Players {
		if len(p.Hand) > 0 {
			count++
		}
	}
	return count
}

// Leaders returns, in seat order, the participants holding the highest total
// of resource r. Every participant leads when all totals are equal.
func Leaders(players []*Player, r Resource) ([]*Player, int) {
	best := 0
	for i, p := range players {
		if i == 0 || p.Resources[r] > best {
			best = p.Resources[r]
		}
	}
	var leaders []*Player
	for _, p := range players {
		if p.Resources[r] == best {
			leaders = append(leaders, p)
		}
	}
	return leaders, best
}
