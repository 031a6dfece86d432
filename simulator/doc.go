// Package simulator schedules logic.Calculators.
//
// New analyzes the wiring of the calculators once. Every calculator gets a
// Coordinate:
//
//   - Priority: the level imposed by the declared Priorities. Readers (and
//     writers) of a high priority bit get a lower level than readers (and
//     writers) of the bits declared later than it. Calculators no
//     declaration mentions are pulled into the level feeding them, or land
//     in one last level.
//   - Group: the connected component of the calculator inside its level.
//     Groups share no SignalBit and run side by side.
//   - Order: the depth of the calculator inside its group along writer to
//     reader edges. Calculators writing the same bit never share an order.
//   - Number: the rank among calculators with the same priority, group and
//     order.
//
// At run time the simulator listens to the bits the calculators read. A
// change marks the readers dirty and DoStep runs the next wave of dirty
// calculators on a pool of worker goroutines.
//
//	sim, err := simulator.New(calcs, prio, nil)
//	if err != nil {
//		return err
//	}
//	defer sim.Shutdown()
//	sim.ScheduleAll()
//	sim.DoSimulation()
package simulator
