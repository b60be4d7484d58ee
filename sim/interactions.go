package sim

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/crowddynamics/crowddynamics/sim/geometry"
)

// InteractAgents accumulates the social and contact forces between all
// agent pairs within interaction range, sweeping pairs through a block
// list with cells sized to the social sight range. Returns the block list
// so callers can reuse the occupancy statistics.
func InteractAgents(a *Agents) *BlockList {
	ids := a.Indices()
	a.ResetNeighbors()
	bl := NewBlockList(ids, a.Position, a.Params.SightSoc)
	bl.ForEachPair(func(i, j int) {
		agentAgentInteraction(a, i, j)
	})
	return bl
}

// InteractObstacles accumulates social and contact forces between agents
// and wall segments.
func InteractObstacles(a *Agents, walls []geometry.Segment) {
	for _, i := range a.Indices() {
		for _, w := range walls {
			agentObstacleInteraction(a, i, w)
		}
	}
}

func agentAgentInteraction(a *Agents, i, j int) {
	x := r2.Sub(a.Position[i], a.Position[j])
	d := r2.Norm(x)
	rTot := a.Radius[i] + a.Radius[j]
	h := d - rTot

	if d <= a.Params.SightSoc {
		var n, rMomentI, rMomentJ r2.Vec
		if a.Model == ModelThreeCircle {
			xi, ri, _ := a.circles(i)
			xj, rj, _ := a.circles(j)
			h, n, rMomentI, rMomentJ = DistanceThreeCircle(xi, ri, xj, rj)
		} else {
			n = geometry.Normalize(x)
		}

		forceI := socialForceAgents(a, i, j, x, h, n)
		forceJ := r2.Scale(-1, forceI)

		if h < 0 {
			t := geometry.Rotate270(n)
			v := r2.Sub(a.Velocity[i], a.Velocity[j])
			fc := ForceContact(h, n, v, t, a.Params.Mu, a.Params.Kappa, a.Params.Damping)
			forceI = r2.Add(forceI, fc)
			forceJ = r2.Sub(forceJ, fc)
		}

		a.Force[i] = r2.Add(a.Force[i], forceI)
		a.Force[j] = r2.Add(a.Force[j], forceJ)
		if a.Orientable() {
			a.Torque[i] += r2.Cross(rMomentI, forceI)
			a.Torque[j] += r2.Cross(rMomentJ, forceJ)
		}
	}

	if a.Params.NeighborRadius > 0 && h < a.Params.NeighborRadius {
		a.noteNeighbor(i, j, h)
		a.noteNeighbor(j, i, h)
	}
}

// socialForceAgents returns the social force on agent i from agent j.
func socialForceAgents(a *Agents, i, j int, x r2.Vec, h float64, n r2.Vec) r2.Vec {
	p := &a.Params
	if p.SocialForce == SocialHelbing {
		f := ForceSocialHelbing(h, n, p.HelbingA, p.HelbingB)
		return geometry.Truncate(f, p.FSocMax)
	}
	if a.Model == ModelThreeCircle {
		return forceSocialThreeCircle(a, i, j)
	}
	v := r2.Sub(a.Velocity[i], a.Velocity[j])
	return ForceSocialPowerLaw(x, v, a.Radius[i]+a.Radius[j], p.KSoc, p.Tau0, p.FSocMax)
}

// forceSocialThreeCircle finds the circle pair with the earliest projected
// collision between two three-circle agents and applies the power-law
// force to it.
func forceSocialThreeCircle(a *Agents, i, j int) r2.Vec {
	v := r2.Sub(a.Velocity[i], a.Velocity[j])
	sq := r2.Dot(v, v)
	if -minRelativeSpeedSq < sq && sq < minRelativeSpeedSq {
		return r2.Vec{}
	}

	xi, ri, _ := a.circles(i)
	xj, rj, _ := a.circles(j)

	tauBest := math.NaN()
	var xBest r2.Vec
	var rBest float64
	for p := 0; p < 3; p++ {
		for q := 0; q < 3; q++ {
			x := r2.Sub(xi[p], xj[q])
			r := ri[p] + rj[q]
			b := -r2.Dot(x, v)
			c := r2.Dot(x, x) - r*r
			disc := b*b - sq*c
			if disc < 0 {
				continue
			}
			tau := (b - math.Sqrt(disc)) / sq
			if tau <= 0 || tau > tauMax {
				continue
			}
			if math.IsNaN(tauBest) || tau < tauBest {
				tauBest = tau
				xBest = x
				rBest = r
			}
		}
	}
	if math.IsNaN(tauBest) {
		return r2.Vec{}
	}
	return ForceSocialPowerLaw(xBest, v, rBest, a.Params.KSoc, a.Params.Tau0, a.Params.FSocMax)
}

func agentObstacleInteraction(a *Agents, i int, w geometry.Segment) {
	d, n := w.DistanceWithNormal(a.Position[i])
	h := d - a.Radius[i]
	if h > a.Params.SightWall {
		return
	}

	var rMoment r2.Vec
	if a.Model == ModelThreeCircle {
		xi, ri, _ := a.circles(i)
		h, n, rMoment = DistanceThreeCircleSegment(xi, ri, w)
	}

	force := socialForceObstacle(a, i, d, h, n)

	if h < 0 {
		t := geometry.Rotate270(n)
		fc := ForceContact(h, n, a.Velocity[i], t, a.Params.Mu, a.Params.Kappa, a.Params.Damping)
		force = r2.Add(force, fc)
	}

	a.Force[i] = r2.Add(a.Force[i], force)
	if a.Orientable() {
		a.Torque[i] += r2.Cross(rMoment, force)
	}
}

// socialForceObstacle returns the social force pushing agent i away from a
// wall, computed against the closest wall point. d is the distance from
// the torso center to the wall, h the skin-to-skin distance of the full
// body model.
func socialForceObstacle(a *Agents, i int, d, h float64, n r2.Vec) r2.Vec {
	p := &a.Params
	if p.SocialForce == SocialHelbing {
		f := ForceSocialHelbing(h, n, p.HelbingA, p.HelbingB)
		return geometry.Truncate(f, p.FWallMax)
	}
	x := r2.Scale(d, n)
	return ForceSocialPowerLaw(x, a.Velocity[i], a.Radius[i], p.KSoc, p.Tau0, p.FWallMax)
}
