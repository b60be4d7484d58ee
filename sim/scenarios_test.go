package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioNames(t *testing.T) {
	assert.Equal(t, []string{"hallway", "outdoor", "room"}, ScenarioNames())
}

func TestScenarioDefaultsCopied(t *testing.T) {
	defaults, err := ScenarioDefaults(ScenarioRoom)
	require.NoError(t, err)
	assert.Equal(t, 1.2, defaults["door_width"])

	defaults["door_width"] = 99
	again, err := ScenarioDefaults(ScenarioRoom)
	require.NoError(t, err)
	assert.Equal(t, 1.2, again["door_width"], "defaults must not be mutable through the copy")
}

func TestBuildScenarioPresetsValid(t *testing.T) {
	for _, name := range ScenarioNames() {
		t.Run(name, func(t *testing.T) {
			field, err := BuildScenario(name, nil)
			require.NoError(t, err)
			assert.NoError(t, field.Validate())
		})
	}
}

func TestBuildScenarioUnknown(t *testing.T) {
	_, err := BuildScenario("stadium", nil)
	assert.Error(t, err)
}

func TestBuildScenarioOverrides(t *testing.T) {
	field, err := BuildScenario(ScenarioRoom, map[string]float64{"width": 20, "door_width": 2})
	require.NoError(t, err)

	_, max := field.Bounds()
	assert.Equal(t, 20.0, max.X)

	// the exit spans exactly the door
	assert.InDelta(t, 2.0, field.Exits[0].Length(), 1e-12)
}

func TestBuildScenarioRejectsBadOverrides(t *testing.T) {
	_, err := BuildScenario(ScenarioRoom, map[string]float64{"doors": 2})
	assert.Error(t, err, "unknown parameter")

	_, err = BuildScenario(ScenarioRoom, map[string]float64{"width": -5})
	assert.Error(t, err, "non-positive parameter")

	_, err = BuildScenario(ScenarioRoom, map[string]float64{"door_width": 50})
	assert.Error(t, err, "door wider than the wall")
}

func TestRoomDoorCenteredOnRightWall(t *testing.T) {
	field, err := BuildScenario(ScenarioRoom, map[string]float64{"height": 10, "door_width": 2})
	require.NoError(t, err)

	exit := field.Exits[0]
	assert.Equal(t, 15.0, exit.P0.X)
	assert.InDelta(t, 4.0, exit.P0.Y, 1e-12)
	assert.InDelta(t, 6.0, exit.P1.Y, 1e-12)

	// five wall segments: top, bottom, left, and the two door jambs
	assert.Len(t, field.Obstacles, 5)
}

func TestHallwayOpenEnd(t *testing.T) {
	field, err := BuildScenario(ScenarioHallway, nil)
	require.NoError(t, err)
	assert.Len(t, field.Obstacles, 2, "hallway walls top and bottom only")
	assert.Equal(t, 20.0, field.Exits[0].P0.X)
}
