package game

type Milestone string

const (
	MilestoneTerraformer Milestone = "terraformer"
	MilestoneMayor       Milestone = "mayor"
	MilestoneGardener    Milestone = "gardener"
	MilestoneBuilder     Milestone = "builder"
	MilestonePlanner     Milestone = "planner"
)

var Milestones = []Milestone{MilestoneTerraformer, MilestoneMayor, MilestoneGardener, MilestoneBuilder, MilestonePlanner}

type Award string

const (
	AwardLandlord   Award = "landlord"
	AwardBanker     Award = "banker"
	AwardScientist  Award = "scientist"
	AwardThermalist Award = "thermalist"
	AwardMiner      Award = "miner"
)

var Awards = []Award{AwardLandlord, AwardBanker, AwardScientist, AwardThermalist, AwardMiner}

func (d *Document) AwardFunded(a Award) bool {
	for _, f := range d.Awards {
		if f.Award == a {
			return true
		}
	}
	return false
}
