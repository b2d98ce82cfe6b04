/*
 * player.go, part of molview.
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	chem "github.com/rmera/molview"
	"github.com/rmera/molview/timeline"
)

const (
	tickInterval = time.Second / 30
	shownAtoms   = 5
	barWidth     = 40
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(1, 2)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// player is the terminal trajectory player.
type player struct {
	state *timeline.State
	traj  *chem.Trajectory
	last  time.Time
}

func newPlayer(traj *chem.Trajectory, opts timeline.Options) player {
	s := timeline.NewWithOptions(traj.NumFrames(), opts)
	s.Load(traj)
	return player{state: s, traj: traj}
}

func (m player) Init() tea.Cmd { return tick() }

func (m player) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		s := m.state
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			s.Toggle()
		case "n", "right":
			s.Pause()
			s.Next()
		case "p", "left":
			s.Pause()
			s.Previous()
		case "+", "=":
			s.SpeedUp()
		case "-", "_":
			s.SpeedDown()
		case "l":
			s.Loop = !s.Loop
		case "i":
			s.Interpolate = !s.Interpolate
		case "s":
			s.Stop()
		case "g", "home":
			s.GotoFrame(0)
		case "G", "end":
			s.GotoFrame(s.TotalFrames - 1)
		}
	case tickMsg:
		now := time.Time(msg)
		dt := tickInterval.Seconds()
		if !m.last.IsZero() && now.After(m.last) {
			dt = now.Sub(m.last).Seconds()
		}
		m.last = now
		m.state.Tick(dt)
		return m, tick()
	}
	return m, nil
}

func (m player) View() string {
	s := m.state
	var b strings.Builder
	b.WriteString(headerStyle.Render(strings.ToUpper(m.title())) + "\n")
	status := "PAUSED"
	if s.Playing {
		status = "PLAYING"
	}
	b.WriteString(statusStyle.Render(status) + "\n\n")

	filled := int(s.Progress() * barWidth)
	b.WriteString("[" + strings.Repeat("=", filled) + strings.Repeat("-", barWidth-filled) + "]\n\n")
	b.WriteString(labelStyle.Render("Frame") + valueStyle.Render(fmt.Sprintf("%d / %d", s.CurrentFrame+1, s.TotalFrames)) + "\n")
	b.WriteString(labelStyle.Render("Speed") + valueStyle.Render(fmt.Sprintf("%.2fx", s.Speed)) + "\n")
	b.WriteString(labelStyle.Render("Loop") + valueStyle.Render(onOff(s.Loop)) + "\n")
	b.WriteString(labelStyle.Render("Interpolate") + valueStyle.Render(onOff(s.Interpolate)) + "\n")
	b.WriteString(labelStyle.Render("Factor") + valueStyle.Render(fmt.Sprintf("%.2f", s.Factor)) + "\n")
	if m.traj.TimeStep > 0 {
		b.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.3f", s.SimulationTime(m.traj.TimeStep))) + "\n")
	}

	b.WriteString("\n")
	pos := s.Positions()
	for i := 0; i < len(pos) && i < shownAtoms; i++ {
		name := fmt.Sprintf("#%d", i)
		if m.traj.HasAtomData() {
			a := m.traj.Atom(i)
			name = fmt.Sprintf("%s %s", a.Element.Symbol(), a.Name)
		}
		b.WriteString(labelStyle.Render(name) + valueStyle.Render(fmt.Sprintf("%8.3f %8.3f %8.3f", pos[i].X, pos[i].Y, pos[i].Z)) + "\n")
	}
	if len(pos) > shownAtoms {
		b.WriteString(valueStyle.Render(fmt.Sprintf("... %d more atoms", len(pos)-shownAtoms)) + "\n")
	}
	b.WriteString(helpStyle.Render("SP:Play/Pause N/P:Step +/-:Speed L:Loop I:Interp S:Stop G/g:Ends Q:Quit"))
	return panelStyle.Render(b.String())
}

func (m player) title() string {
	if m.traj.Meta.Title != "" {
		return m.traj.Meta.Title
	}
	return m.traj.Meta.Source
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (a *app) playCmd() *cobra.Command {
	var structure string
	cmd := &cobra.Command{
		Use:   "play FILE",
		Short: "play a trajectory in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			traj, err := load(args[0], structure)
			if err != nil {
				return err
			}
			if traj.NumFrames() == 0 {
				return fmt.Errorf("%s has no frames", args[0])
			}
			p := tea.NewProgram(newPlayer(traj, a.cfg.TimelineOptions()), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}
	cmd.Flags().StringVar(&structure, "structure", "", "structure file with the atom data")
	return cmd
}
