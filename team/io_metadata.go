package team

import (
	"fmt"
	"log/slog"
)

// IODescriptor describes one network input or output slot.
type IODescriptor struct {
	ID          string  // Unique identifier
	Label       string  // Display name
	Description string  // Extended description
	Min         float64 // Minimum value
	Max         float64 // Maximum value
	IsCentered  bool    // True for signed slots (-1 to +1)
	Group       string  // Logical grouping ("opponent", "reference", "movement")
}

// referenceNames labels the field reference points in sensing order.
var referenceNames = []string{"left_corner", "right_corner"}

// InputDescriptors returns metadata for every input slot of an agent playing
// against opponents. Order matches Agent.Inputs.
func InputDescriptors(opponents *Roster) []IODescriptor {
	descs := make([]IODescriptor, 0, 2*opponents.Len()+2*len(referenceNames))
	for _, o := range opponents.Agents {
		id := fmt.Sprintf("%s_%s%d", o.Side, o.Role, o.ID)
		descs = append(descs,
			IODescriptor{ID: id + "_dist", Label: fmt.Sprintf("%s%d Dist", o.Role, o.ID), Description: "Distance / field diagonal", Min: 0, Max: 1, Group: "opponent"},
			IODescriptor{ID: id + "_bearing", Label: fmt.Sprintf("%s%d Brg", o.Role, o.ID), Description: "Bearing from heading in half-turns", Min: -1, Max: 1, IsCentered: true, Group: "opponent"},
		)
	}
	for _, name := range referenceNames {
		descs = append(descs,
			IODescriptor{ID: name + "_dist", Label: name + " dist", Description: "Distance to score-line corner / field diagonal", Min: 0, Max: 1, Group: "reference"},
			IODescriptor{ID: name + "_bearing", Label: name + " brg", Description: "Bearing to score-line corner", Min: -1, Max: 1, IsCentered: true, Group: "reference"},
		)
	}
	return descs
}

// OutputDescriptors returns metadata for the two network outputs.
func OutputDescriptors() []IODescriptor {
	return []IODescriptor{
		{ID: "move", Label: "Move", Description: "Step forward when high", Min: 0, Max: 1, Group: "movement"},
		{ID: "turn", Label: "Turn", Description: "Low turns left, high turns right", Min: 0, Max: 1, Group: "movement"},
	}
}

// InputAttrs pairs an agent's current inputs with their descriptor IDs for logging.
// Slots without a descriptor are skipped.
func (a *Agent) InputAttrs(opponents *Roster) []any {
	descs := InputDescriptors(opponents)
	attrs := make([]any, 0, len(descs))
	for i, d := range descs {
		if i >= len(a.Inputs) {
			break
		}
		attrs = append(attrs, slog.Float64(d.ID, a.Inputs[i]))
	}
	return attrs
}
