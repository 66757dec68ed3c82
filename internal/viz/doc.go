// Package viz renders solve progress in the terminal.
//
//   - [Progress]: a lipgloss progress bar implementing dynamo.Progress
//   - [LiveModel]: a Bubble Tea view fed by a [LiveReporter], showing the
//     latest expectation values with sparklines and a chart
//
// A live run wires the reporter into the solve and the model into a program:
//
//	p := tea.NewProgram(viz.NewLiveModel(name, labels))
//	rep := viz.NewLiveReporter(p.Send, eOps, isKet)
//	go func() { _, err := run(solver.WithProgress(rep), solver.WithObserver(rep)); p.Send(viz.Finished(err)) }()
//	_, err := p.Run()
package viz
