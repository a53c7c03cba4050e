// Package board is the fixed 63-cell graph of the planet surface plus the
// two off-grid colony slots.
package board

// Size is the number of addressable cells. Cells 0 and 1 are off-grid
// special city slots with no neighbors.
const Size = 63

type RewardKind string

const (
	RewardSteel    RewardKind = "steel"
	RewardTitanium RewardKind = "titanium"
	RewardPlants   RewardKind = "plants"
	RewardProject  RewardKind = "project"
)

type Reward struct {
	Kind   RewardKind
	Amount int
}

// CellStatic is the immutable description of one cell.
type CellStatic struct {
	SpecialCity bool
	SpecialZone string
	Ocean       bool
	Rewards     []Reward
	Neighbors   []int
}

// Named cells used by individual projects.
const (
	PhobosSpaceHaven = 0
	GanymedeColony   = 1
	NoctisCity       = 30
)

// Volcanic cells (Tharsis Tholus, Ascraeus, Pavonis and Arsia Mons).
var Volcanic = []int{8, 13, 20, 28}

var cells = [Size]CellStatic{
	0: {SpecialCity: true, SpecialZone: "Phobos Space Haven", Neighbors: []int{}},
	1: {SpecialCity: true, SpecialZone: "Ganymede Colony", Neighbors: []int{}},
	2: {Rewards: []Reward{{RewardSteel, 2}}, Neighbors: []int{3, 7, 8}},
	3: {Ocean: true, Rewards: []Reward{{RewardSteel, 2}}, Neighbors: []int{2, 4, 8, 9}},
	4: {Neighbors: []int{3, 5, 9, 10}},
	5: {Ocean: true, Rewards: []Reward{{RewardProject, 1}}, Neighbors: []int{4, 6, 10, 11}},
	6: {Ocean: true, Neighbors: []int{5, 11, 12}},
	7: {Neighbors: []int{2, 8, 13, 14}},
	8: {SpecialZone: "Tharsis Tholus", Rewards: []Reward{{RewardSteel, 1}}, Neighbors: []int{2, 3, 7, 9, 14, 15}},
	9: {Neighbors: []int{3, 4, 8, 10, 15, 16}},
	10: {Neighbors: []int{4, 5, 9, 11, 16, 17}},
	11: {Neighbors: []int{5, 6, 10, 12, 17, 18}},
	12: {Ocean: true, Rewards: []Reward{{RewardProject, 2}}, Neighbors: []int{6, 11, 18, 19}},
	13: {SpecialZone: "Ascraeus Mons", Rewards: []Reward{{RewardProject, 1}}, Neighbors: []int{7, 14, 20, 21}},
	14: {Neighbors: []int{7, 8, 13, 15, 21, 22}},
	15: {Neighbors: []int{8, 9, 14, 16, 22, 23}},
	16: {Neighbors: []int{9, 10, 15, 17, 23, 24}},
	17: {Neighbors: []int{10, 11, 16, 18, 24, 25}},
	18: {Neighbors: []int{11, 12, 17, 19, 25, 26}},
	19: {Rewards: []Reward{{RewardSteel, 1}}, Neighbors: []int{12, 18, 26, 27}},
	20: {SpecialZone: "Pavonis Mons", Rewards: []Reward{{RewardPlants, 1}, {RewardTitanium, 1}}, Neighbors: []int{13, 21, 28, 29}},
	21: {Rewards: []Reward{{RewardPlants, 1}}, Neighbors: []int{13, 14, 20, 22, 29, 30}},
	22: {Rewards: []Reward{{RewardPlants, 1}}, Neighbors: []int{14, 15, 21, 23, 30, 31}},
	23: {Rewards: []Reward{{RewardPlants, 1}}, Neighbors: []int{15, 16, 22, 24, 31, 32}},
	24: {Rewards: []Reward{{RewardPlants, 2}}, Neighbors: []int{16, 17, 23, 25, 32, 33}},
	25: {Rewards: []Reward{{RewardPlants, 1}}, Neighbors: []int{17, 18, 24, 26, 33, 34}},
	26: {Rewards: []Reward{{RewardPlants, 1}}, Neighbors: []int{18, 19, 25, 27, 34, 35}},
	27: {Ocean: true, Rewards: []Reward{{RewardPlants, 2}}, Neighbors: []int{19, 26, 35, 36}},
	28: {SpecialZone: "Arsia Mons", Rewards: []Reward{{RewardPlants, 2}}, Neighbors: []int{20, 29, 37}},
	29: {Rewards: []Reward{{RewardPlants, 2}}, Neighbors: []int{20, 21, 28, 30, 37, 38}},
	30: {SpecialCity: true, SpecialZone: "Noctis City", Rewards: []Reward{{RewardPlants, 2}}, Neighbors: []int{21, 22, 29, 31, 38, 39}},
	31: {Ocean: true, Rewards: []Reward{{RewardPlants, 2}}, Neighbors: []int{22, 23, 30, 32, 39, 40}},
	32: {Ocean: true, Rewards: []Reward{{RewardPlants, 2}}, Neighbors: []int{23, 24, 31, 33, 40, 41}},
	33: {Ocean: true, Rewards: []Reward{{RewardPlants, 2}}, Neighbors: []int{24, 25, 32, 34, 41, 42}},
	34: {Rewards: []Reward{{RewardPlants, 2}}, Neighbors: []int{25, 26, 33, 35, 42, 43}},
	35: {Rewards: []Reward{{RewardPlants, 2}}, Neighbors: []int{26, 27, 34, 36, 43, 44}},
	36: {Rewards: []Reward{{RewardPlants, 2}}, Neighbors: []int{27, 35, 44}},
	37: {Rewards: []Reward{{RewardPlants, 1}}, Neighbors: []int{28, 29, 38, 45}},
	38: {Rewards: []Reward{{RewardPlants, 2}}, Neighbors: []int{29, 30, 37, 39, 45, 46}},
	39: {Rewards: []Reward{{RewardPlants, 1}}, Neighbors: []int{30, 31, 38, 40, 46, 47}},
	40: {Rewards: []Reward{{RewardPlants, 1}}, Neighbors: []int{31, 32, 39, 41, 47, 48}},
	41: {Rewards: []Reward{{RewardPlants, 1}}, Neighbors: []int{32, 33, 40, 42, 48, 49}},
	42: {Ocean: true, Rewards: []Reward{{RewardPlants, 1}}, Neighbors: []int{33, 34, 41, 43, 49, 50}},
	43: {Ocean: true, Rewards: []Reward{{RewardPlants, 1}}, Neighbors: []int{34, 35, 42, 44, 50, 51}},
	44: {Ocean: true, Rewards: []Reward{{RewardPlants, 1}}, Neighbors: []int{35, 36, 43, 51}},
	45: {Neighbors: []int{37, 38, 46, 52}},
	46: {Neighbors: []int{38, 39, 45, 47, 52, 53}},
	47: {Neighbors: []int{39, 40, 46, 48, 53, 54}},
	48: {Neighbors: []int{40, 41, 47, 49, 54, 55}},
	49: {Neighbors: []int{41, 42, 48, 50, 55, 56}},
	50: {Rewards: []Reward{{RewardPlants, 1}}, Neighbors: []int{42, 43, 49, 51, 56, 57}},
	51: {Neighbors: []int{43, 44, 50, 57}},
	52: {Rewards: []Reward{{RewardSteel, 2}}, Neighbors: []int{45, 46, 53, 58}},
	53: {Neighbors: []int{46, 47, 52, 54, 58, 59}},
	54: {Rewards: []Reward{{RewardProject, 1}}, Neighbors: []int{47, 48, 53, 55, 59, 60}},
	55: {Rewards: []Reward{{RewardProject, 1}}, Neighbors: []int{48, 49, 54, 56, 60, 61}},
	56: {Neighbors: []int{49, 50, 55, 57, 61, 62}},
	57: {Rewards: []Reward{{RewardTitanium, 1}}, Neighbors: []int{50, 51, 56, 62}},
	58: {Rewards: []Reward{{RewardSteel, 1}}, Neighbors: []int{52, 53, 59}},
	59: {Rewards: []Reward{{RewardSteel, 2}}, Neighbors: []int{53, 54, 58, 60}},
	60: {Neighbors: []int{54, 55, 59, 61}},
	61: {Neighbors: []int{55, 56, 60, 62}},
	62: {Ocean: true, Rewards: []Reward{{RewardTitanium, 2}}, Neighbors: []int{56, 57, 61}},
}

func Valid(pos int) bool { return pos >= 0 && pos < Size }

// Cell returns the static description of pos; out of range positions read
// as an empty off-grid cell.
func Cell(pos int) CellStatic {
	if !Valid(pos) {
		return CellStatic{}
	}
	return cells[pos]
}

func Neighbors(pos int) []int {
	if !Valid(pos) {
		return nil
	}
	return cells[pos].Neighbors
}

// OnMars reports whether pos is on the planet grid.
func OnMars(pos int) bool {
	return pos > GanymedeColony && pos < Size
}

func (c CellStatic) HasReward(kinds ...RewardKind) bool {
	for _, r := range c.Rewards {
		for _, k := range kinds {
			if r.Kind == k {
				return true
			}
		}
	}
	return false
}
